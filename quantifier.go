package seqex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// boundKind distinguishes the three quantifier spec forms.
type boundKind uint8

const (
	boundLiteral boundKind = iota // fixed element count
	boundFromEnd                  // negative: counted back from the data length
	boundPercent                  // percentage of (length-1)
)

// bound is one half of a quantifier, or a position spec, before resolution
// against a concrete data length.
type bound struct {
	kind boundKind
	n    int
	pct  float64
}

// parseBound accepts the quantifier spec forms the constructors take:
// a non-negative int, a negative int (relative to the end), or a string
// like "75%". Anything else is a malformed quantifier.
func parseBound(spec any) (bound, error) {
	switch v := spec.(type) {
	case int:
		if v < 0 {
			return bound{kind: boundFromEnd, n: v}, nil
		}
		return bound{kind: boundLiteral, n: v}, nil
	case string:
		s := strings.TrimSpace(v)
		if !strings.HasSuffix(s, "%") {
			return bound{}, &QuantifierError{Spec: spec, Reason: "string spec must end in %"}
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return bound{}, &QuantifierError{Spec: spec, Reason: "unparseable percentage"}
		}
		if pct < 0 {
			return bound{}, &QuantifierError{Spec: spec, Reason: "negative percentage"}
		}
		return bound{kind: boundPercent, pct: pct}, nil
	default:
		return bound{}, &QuantifierError{Spec: spec, Reason: fmt.Sprintf("unsupported spec type %T", spec)}
	}
}

// quantifier is a parsed min/max pair, resolved against the actual data
// length once per invocation.
type quantifier struct {
	min, max bound
}

func newQuantifier(min, max any) (quantifier, error) {
	lo, err := parseBound(min)
	if err != nil {
		return quantifier{}, err
	}
	hi, err := parseBound(max)
	if err != nil {
		return quantifier{}, err
	}
	return quantifier{min: lo, max: hi}, nil
}

// pctOf resolves a percentage quantifier bound: floor((n-1) * pct / 100).
func pctOf(pct float64, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Floor(float64(n-1) * pct / 100))
}

// resolve computes concrete min/max sizes for a data length of n.
// A false return means the quantifier cannot be satisfied by this data;
// that is a normal "does not apply" outcome, not an error.
func (q quantifier) resolve(n int) (minSz, maxSz int, ok bool) {
	switch q.min.kind {
	case boundPercent:
		minSz = pctOf(q.min.pct, n)
	case boundFromEnd:
		minSz = n + q.min.n
		if minSz < 0 {
			minSz = 0
		}
	default:
		minSz = q.min.n
		if minSz > n {
			return 0, 0, false
		}
	}

	switch q.max.kind {
	case boundPercent:
		maxSz = pctOf(q.max.pct, n)
	case boundFromEnd:
		maxSz = n + q.max.n
		if maxSz < 0 {
			return 0, 0, false
		}
	default:
		maxSz = q.max.n
		if maxSz > n {
			maxSz = n
		}
	}

	if maxSz < minSz {
		return 0, 0, false
	}
	return minSz, maxSz, true
}

// zeroQuantifier is the fixed [0,0] quantifier used by zero-width
// assertions.
func zeroQuantifier() quantifier {
	return quantifier{min: bound{kind: boundLiteral}, max: bound{kind: boundLiteral}}
}

// Position constrains where a zero-width assertion may hold. Positions
// range over 0..N inclusive (between elements, with N one past the last
// element), so percentage specs resolve against N rather than N-1:
// At("100%") on a length-5 sequence means position 5.
type Position struct {
	lo, hi bound
	exact  bool
	ranged bool
}

// At builds an exact position spec. pos may be an int, a negative int
// (relative to the end) or a percentage string.
//
// Example:
//
//	end := seqex.Must(seqex.NewAssertion("end", seqex.Must(seqex.At("100%"))))
func At(pos any) (*Position, error) {
	b, err := parseBound(pos)
	if err != nil {
		return nil, err
	}
	return &Position{lo: b, hi: b, exact: true}, nil
}

// Between builds an inclusive position range spec.
func Between(lo, hi any) (*Position, error) {
	l, err := parseBound(lo)
	if err != nil {
		return nil, err
	}
	h, err := parseBound(hi)
	if err != nil {
		return nil, err
	}
	return &Position{lo: l, hi: h, ranged: true}, nil
}

// resolvePos resolves one position bound against length n.
func resolvePos(b bound, n int) int {
	switch b.kind {
	case boundPercent:
		return int(math.Floor(float64(n) * b.pct / 100))
	case boundFromEnd:
		return n + b.n
	default:
		return b.n
	}
}

// check resolves the spec against length n into a predicate over left
// offsets. A nil *Position means "any position". ok is false when the
// resolved constraint can never hold for this data.
func (p *Position) check(n int) (func(int) bool, bool) {
	if p == nil {
		return func(int) bool { return true }, true
	}
	lo := resolvePos(p.lo, n)
	hi := resolvePos(p.hi, n)
	if p.exact {
		hi = lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		return nil, false
	}
	return func(pos int) bool { return pos >= lo && pos <= hi }, true
}
