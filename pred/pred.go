// Package pred provides stock predicate factories for the seqex engine:
// element-wise tests, monotonic runs, constant and linear fit scores, and a
// dictionary-literal predicate for byte sequences.
//
// All factories follow the partial-match convention: they report the length
// of the longest matching prefix of the offered span, so the engine's
// greedy search settles on the widest span the data supports.
package pred

import (
	"cmp"
	"fmt"

	"github.com/coregx/seqex"
)

// ForSlice adapts a typed span function into a PredicateFunc. The data must
// be a []T; anything else fails the match with a predicate error.
//
// Example:
//
//	sum := pred.ForSlice(func(xs []float64) int {
//	    if xs[0] > 0 { return len(xs) }
//	    return 0
//	})
func ForSlice[T any](fn func(span []T) int) seqex.PredicateFunc {
	return func(data any, left, right int) (int, seqex.Details, error) {
		xs, ok := data.([]T)
		if !ok {
			return 0, nil, fmt.Errorf("want []%T data, got %T", *new(T), data)
		}
		return fn(xs[left : right+1]), nil, nil
	}
}

// AllOf matches the longest prefix of the span whose every element
// satisfies fn.
//
// Example:
//
//	neg := pred.AllOf(func(x float64) bool { return x < 0 })
func AllOf[T any](fn func(T) bool) seqex.PredicateFunc {
	return ForSlice(func(span []T) int {
		n := 0
		for _, x := range span {
			if !fn(x) {
				break
			}
			n++
		}
		return n
	})
}

// Equal matches the longest prefix of the span equal to want, element by
// element, up to len(want) elements.
func Equal[T comparable](want ...T) seqex.PredicateFunc {
	return ForSlice(func(span []T) int {
		n := 0
		for i, x := range span {
			if i >= len(want) || x != want[i] {
				break
			}
			n++
		}
		return n
	})
}

// NonDecreasing matches the longest prefix in which every element is >= its
// predecessor.
func NonDecreasing[T cmp.Ordered]() seqex.PredicateFunc {
	return ForSlice(func(span []T) int {
		for i := 1; i < len(span); i++ {
			if span[i] < span[i-1] {
				return i
			}
		}
		return len(span)
	})
}

// NonIncreasing matches the longest prefix in which every element is <= its
// predecessor.
func NonIncreasing[T cmp.Ordered]() seqex.PredicateFunc {
	return ForSlice(func(span []T) int {
		for i := 1; i < len(span); i++ {
			if span[i] > span[i-1] {
				return i
			}
		}
		return len(span)
	})
}

// ConstantFit matches the longest prefix of a []float64 span that stays
// within tol of its running mean — the "best constant fit" score used by
// statistics-driven patterns such as steady-state detection.
func ConstantFit(tol float64) seqex.PredicateFunc {
	return ForSlice(func(span []float64) int {
		if len(span) == 0 {
			return 0
		}
		sum := 0.0
		for i, x := range span {
			sum += x
			mean := sum / float64(i+1)
			for j := 0; j <= i; j++ {
				if d := span[j] - mean; d > tol || d < -tol {
					return i
				}
			}
		}
		return len(span)
	})
}

// LinearFit matches the longest prefix of a []float64 span whose
// least-squares line fits every element within tol.
func LinearFit(tol float64) seqex.PredicateFunc {
	return ForSlice(func(span []float64) int {
		if len(span) == 0 {
			return 0
		}
		best := 1
		for n := 2; n <= len(span); n++ {
			a, b := leastSquares(span[:n])
			ok := true
			for i := 0; i < n; i++ {
				if d := span[i] - (a + b*float64(i)); d > tol || d < -tol {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
			best = n
		}
		return best
	})
}

// leastSquares fits y = a + b*x over x = 0..len(ys)-1.
func leastSquares(ys []float64) (a, b float64) {
	n := float64(len(ys))
	var sx, sy, sxx, sxy float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return sy / n, 0
	}
	b = (n*sxy - sx*sy) / den
	a = (sy - b*sx) / n
	return a, b
}
