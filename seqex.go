// Package seqex provides greedy, backtracking pattern matching over
// arbitrary ordered sequences.
//
// seqex applies regular-expression-style matching semantics to any indexable
// data — numeric series, token streams, byte slices — using caller-supplied
// predicates instead of fixed character classes. Patterns compose into
// trees (sequence, conjunction, disjunction, quantified atoms, zero-width
// assertions) and the engine searches all admissible start/end offset pairs,
// greedily preferring the earliest start and the widest span.
//
// Basic usage:
//
//	// Match the longest run of negative values, at least one element long.
//	p, err := seqex.NewPredicate("neg", 1, "100%", func(data any, l, r int) (int, seqex.Details, error) {
//	    xs := data.([]float64)
//	    n := 0
//	    for _, x := range xs[l : r+1] {
//	        if x >= 0 {
//	            break
//	        }
//	        n++
//	    }
//	    return n, nil, nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := seqex.Match(p, []float64{-1, -1, -1, -1, 5, 5, 5, -1, -1})
//	// res.Start() == 0, res.Consumed() == 4
//
// Patterns are quantified with min/max bounds that may be literal counts,
// negative counts (relative to the end of the data), or percentage strings
// such as "50%" resolved against the actual data length at match time.
//
// Composite patterns:
//
//	rise := seqex.Must(seqex.NewPredicate("rise", 2, "100%", pred.NonDecreasing[float64]()))
//	fall := seqex.Must(seqex.NewPredicate("fall", 2, "100%", pred.NonIncreasing[float64]()))
//	peak := seqex.Must(seqex.NewSeq("peak", rise, fall))
//
//	res, err := seqex.Match(peak, series)
//	for _, rec := range seqex.DetailsFor(peak, "rise") {
//	    fmt.Println(rec.Left, rec.Right)
//	}
//
// Data access goes through the seqlen package: any container with a
// registered length adapter (or a Len() method) can be matched. Matching is
// single-threaded and re-entrant: a predicate may call Match on another
// pattern — or the same pattern instance — against a sub-range of the data;
// the engine stashes and restores in-flight state around the nested call.
package seqex

import (
	"go.uber.org/multierr"

	"github.com/coregx/seqex/seqlen"
)

// Details carries arbitrary key/value information produced by a predicate
// alongside its consumed count. It is stored verbatim in the MatchRecord of
// the pattern that produced it.
type Details map[string]any

// MatchRecord records one positive sub-match of a named pattern:
// the offsets it covered and any details its predicate reported.
// Right == Left-1 encodes a zero-width match.
type MatchRecord struct {
	Left    int
	Right   int
	Details Details
}

// ZeroWidth reports whether the record describes a zero-width match.
func (m MatchRecord) ZeroWidth() bool {
	return m.Right == m.Left-1
}

// Result is the outcome of a top-level Match call.
//
// The zero Result means "no match"; a failed match is not an error.
type Result struct {
	matched   bool
	zeroWidth bool
	start     int
	consumed  int
}

// Matched reports whether the pattern matched at all.
func (r Result) Matched() bool { return r.matched }

// Start returns the left offset where the match begins.
// Only meaningful when Matched is true.
func (r Result) Start() int { return r.start }

// Consumed returns the number of elements the match covers.
// Zero-width matches consume zero elements but still report Matched.
func (r Result) Consumed() int { return r.consumed }

// ZeroWidth reports whether the match succeeded without consuming elements.
func (r Result) ZeroWidth() bool { return r.zeroWidth }

// Match runs pattern p against data and returns the first (leftmost,
// greediest) match found, or an empty Result if nothing matched.
//
// The data length is resolved through the seqlen registry; containers with
// no registered adapter yield seqlen.ErrUnknownContainer. Passing a
// map[string]any dispatches to MatchSubsets.
//
// Example:
//
//	res, err := seqex.Match(p, []int{3, 1, 4, 1, 5})
//	if err != nil {
//	    return err
//	}
//	if res.Matched() {
//	    use(res.Start(), res.Consumed())
//	}
func Match(p Pattern, data any) (Result, error) {
	if subsets, ok := data.(map[string]any); ok {
		return MatchSubsets(p, subsets)
	}
	n, err := seqlen.Of(data)
	if err != nil {
		return Result{}, err
	}
	return runMatch(p, data, n)
}

// MatchSubsets matches a named-subset group against a set of named
// sequences. Each child of the root group is matched against the subset it
// was bound to at construction time.
//
// Example:
//
//	g := seqex.Must(seqex.NewAndSubsets("both",
//	    seqex.Sub("price", pricePattern),
//	    seqex.Sub("volume", volumePattern),
//	))
//	res, err := seqex.MatchSubsets(g, map[string]any{
//	    "price":  prices,
//	    "volume": volumes,
//	})
func MatchSubsets(p Pattern, subsets map[string]any) (Result, error) {
	if p.subsetKeys() == nil {
		return Result{}, &SubsetError{Pattern: p.Name(), Reason: "root pattern is not a subset group", Err: ErrSubsetUsage}
	}
	return runMatch(p, subsets, 0)
}

// runMatch drives one full pattern invocation: prepare, offset search,
// cleanup. Cleanup always runs, even when prepare fails or the search
// errors; errors from all phases are aggregated and returned together.
func runMatch(p Pattern, data any, n int) (Result, error) {
	inv := &invocation{}
	ok, err := p.prepare(inv, data, n)
	if err != nil || !ok {
		return Result{}, multierr.Append(err, p.cleanup())
	}

	start, cons, det, merr := searchOffsets(p)
	if merr == nil && cons.ok() {
		// storeMatch: record the root's own match before cleanup so that
		// DetailsFor can retrieve it afterwards.
		inv.push(p.base(), start, cons, det)
	}
	if err := multierr.Append(merr, p.cleanup()); err != nil {
		return Result{}, err
	}
	if !cons.ok() {
		return Result{}, nil
	}
	return Result{
		matched:   true,
		zeroWidth: cons.zero,
		start:     start,
		consumed:  cons.n,
	}, nil
}

// searchOffsets is the top-level offset-search loop. It walks every
// admissible (left, right) pair — left ascending, right descending from the
// widest admissible span — and interprets the tryMatch return protocol:
//
//	c >  span: contract violation (fatal)
//	c == span: full-range match, stop
//	0 < c < span: shorter match, still success, stop
//	zero-width success: stop
//	c == 0: no right offset at this left can match, advance left
//	c <  0: shrink hint, retry at right reduced by |c|
//
// A shrink hint that would take right below the pattern's minimum span is
// treated as an ordinary failure for this left offset.
func searchOffsets(p Pattern) (int, consumed, Details, error) {
	b := p.base()
	n, minSz, maxSz := b.n, b.minSz, b.maxSz

	for left := 0; left <= n-minSz; left++ {
		right := left + maxSz - 1
		if right > n-1 {
			right = n - 1
		}
		for right >= left+minSz-1 {
			cons, det, err := p.tryMatch(left, right)
			if err != nil {
				return 0, consumed{}, nil, err
			}
			span := right - left + 1
			switch {
			case cons.n > span:
				return 0, consumed{}, nil, &ContractError{
					Pattern: b.name, Left: left, Right: right, Consumed: cons.n,
				}
			case cons.ok():
				return left, cons, det, nil
			case cons.n == 0:
				// Definite failure at this left for any smaller right.
				right = left + minSz - 2
			default:
				right += cons.n
			}
		}
	}
	return 0, consumed{}, nil, nil
}

// DetailsFor returns every MatchRecord stored for the pattern named name
// within the tree rooted at p, in the order the sub-matches were made.
// It returns nil if no pattern carries that name or nothing was recorded.
//
// Records survive until the next Match call on the same tree, so they can
// be inspected after Match returns.
func DetailsFor(p Pattern, name string) []MatchRecord {
	var out []MatchRecord
	walk(p, map[Pattern]bool{}, func(q Pattern) bool {
		if q.Name() == name {
			out = q.base().records
			return false
		}
		return true
	})
	return out
}

// DetailFor returns the first MatchRecord stored for name, for callers that
// expect a single sub-match. The second return is false when no record
// exists.
func DetailFor(p Pattern, name string) (MatchRecord, bool) {
	recs := DetailsFor(p, name)
	if len(recs) == 0 {
		return MatchRecord{}, false
	}
	return recs[0], true
}

// Must wraps a constructor call — a pattern or a Position spec — and panics
// on error. It is intended for pattern trees known to be valid at program
// start.
//
// Example:
//
//	var gap = seqex.Must(seqex.NewAny("gap", 0, "50%"))
//	var end = seqex.Must(seqex.NewAssertion("end", seqex.Must(seqex.At("100%"))))
func Must[T any](v T, err error) T {
	if err != nil {
		panic("seqex: " + err.Error())
	}
	return v
}

// walk visits every node of the tree rooted at p exactly once, depth-first
// in declaration order. fn returning false stops the walk.
func walk(p Pattern, seen map[Pattern]bool, fn func(Pattern) bool) bool {
	if seen[p] {
		return true
	}
	seen[p] = true
	if !fn(p) {
		return false
	}
	cont := true
	p.eachChild(func(c Pattern) bool {
		cont = walk(c, seen, fn)
		return cont
	})
	return cont
}
