package seqex

import "fmt"

// AssertFunc is the user test for a predicate-driven zero-width assertion.
// pos is the position being asserted (0..N inclusive, between elements).
// The function consumes nothing by construction; it reports whether the
// assertion holds and may attach Details to the match record.
type AssertFunc func(data any, pos int) (bool, Details, error)

// Assertion is a zero-width pattern: it consumes no elements and succeeds
// between elements, optionally only at positions admitted by a Position
// spec, and optionally only when a user function agrees.
type Assertion struct {
	patternBase
	pos *Position
	fn  AssertFunc

	// posOk is the position spec resolved against the current data length;
	// invocation-scoped, stashed on re-entry.
	posOk func(int) bool
}

// NewAssertion builds a position-only zero-width assertion. A nil pos means
// the assertion holds at every position.
//
// Example:
//
//	atEnd, err := seqex.NewAssertion("atEnd", seqex.Must(seqex.At("100%")))
func NewAssertion(name string, pos *Position) (*Assertion, error) {
	return newAssertion(name, pos, nil)
}

// NewAssertionFunc builds a zero-width assertion that additionally consults
// fn at each candidate position.
//
// Example:
//
//	boundary, err := seqex.NewAssertionFunc("boundary", nil,
//	    func(data any, pos int) (bool, seqex.Details, error) {
//	        xs := data.([]float64)
//	        return pos > 0 && pos < len(xs) && xs[pos-1] < 0 && xs[pos] >= 0, nil, nil
//	    })
func NewAssertionFunc(name string, pos *Position, fn AssertFunc) (*Assertion, error) {
	if fn == nil {
		return nil, &QuantifierError{Spec: nil, Reason: "nil assertion function"}
	}
	return newAssertion(name, pos, fn)
}

func newAssertion(name string, pos *Position, fn AssertFunc) (*Assertion, error) {
	a := &Assertion{
		patternBase: patternBase{name: name, quant: zeroQuantifier()},
		pos:         pos,
		fn:          fn,
	}
	a.ext = a
	return a, nil
}

func (a *Assertion) prepare(inv *invocation, data any, n int) (bool, error) {
	done, ok, err := a.beginPrepare(inv)
	if done || err != nil {
		return ok, err
	}
	a.data, a.n = data, n
	a.minSz, a.maxSz = 0, 0
	posOk, ok := a.pos.check(n)
	if !ok {
		return false, nil
	}
	a.posOk = posOk
	a.run = runApplying
	return true, nil
}

func (a *Assertion) tryMatch(left, right int) (consumed, Details, error) {
	if right != left-1 {
		// Zero-width patterns must only ever be offered an empty span.
		return consumed{}, nil, &ContractError{Pattern: a.name, Left: left, Right: right, Consumed: 0}
	}
	if !a.posOk(left) {
		return noMatch(), nil, nil
	}
	if a.fn == nil {
		return zeroWidth(), nil, nil
	}
	ok, det, err := a.call(left)
	if err != nil {
		return consumed{}, nil, &PredicateError{Pattern: a.name, Err: err}
	}
	if !ok {
		return noMatch(), nil, nil
	}
	return zeroWidth(), det, nil
}

func (a *Assertion) call(pos int) (ok bool, det Details, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, det = false, nil
			err = fmt.Errorf("assertion panicked: %v", r)
		}
	}()
	return a.fn(a.data, pos)
}

func (a *Assertion) cleanup() error {
	if !a.beginCleanup() {
		return nil
	}
	a.posOk = nil
	a.endCleanup()
	return nil
}

func (a *Assertion) snap() any {
	posOk := a.posOk
	a.posOk = nil
	return posOk
}

func (a *Assertion) restore(extra any) {
	if extra == nil {
		a.posOk = nil
		return
	}
	a.posOk = extra.(func(int) bool)
}
