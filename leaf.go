package seqex

import "fmt"

// PredicateFunc decides how much of data[left..right] matches. It returns
// the number of elements consumed starting at left:
//
//	n == right-left+1 — the whole offered span matches
//	0 < n < right-left+1 — a shorter prefix matches (still a success)
//	n == 0 — no match at this left offset, for any narrower span
//	n < 0 — shrink hint: the span cannot match but right-(-n) might
//
// Returning more than right-left+1 is a contract violation and aborts the
// match. The optional Details are stored in the pattern's MatchRecord.
// A returned error — or a panic — aborts the whole match, wrapped in a
// PredicateError naming the pattern.
type PredicateFunc func(data any, left, right int) (int, Details, error)

// AnyPattern matches any span admitted by its quantifier. It is the
// wildcard leaf, typically used as filler between meaningful patterns in a
// sequence.
type AnyPattern struct {
	patternBase
}

// NewAny builds a wildcard pattern. min and max accept ints, negative ints
// (relative to the data length) or percentage strings; name may be "" for
// an anonymous pattern.
//
// Example:
//
//	gap, err := seqex.NewAny("gap", 0, "25%")
func NewAny(name string, min, max any) (*AnyPattern, error) {
	q, err := newQuantifier(min, max)
	if err != nil {
		return nil, err
	}
	return &AnyPattern{patternBase{name: name, quant: q}}, nil
}

func (p *AnyPattern) prepare(inv *invocation, data any, n int) (bool, error) {
	done, ok, err := p.beginPrepare(inv)
	if done || err != nil {
		return ok, err
	}
	p.data, p.n = data, n
	minSz, maxSz, ok := p.quant.resolve(n)
	if !ok {
		return false, nil
	}
	p.minSz, p.maxSz = minSz, maxSz
	p.run = runApplying
	return true, nil
}

func (p *AnyPattern) tryMatch(left, right int) (consumed, Details, error) {
	span := right - left + 1
	if span == 0 {
		// An empty span is a zero-width success when the quantifier allows
		// consuming nothing; reporting 0 here would read as failure and
		// make min-0 wildcards unsatisfiable inside sequences.
		if p.minSz == 0 {
			return zeroWidth(), nil, nil
		}
		return noMatch(), nil, nil
	}
	return matched(span), nil, nil
}

func (p *AnyPattern) cleanup() error {
	if !p.beginCleanup() {
		return nil
	}
	p.endCleanup()
	return nil
}

// PredicatePattern delegates the match decision to a user function.
type PredicatePattern struct {
	patternBase
	fn PredicateFunc
}

// NewPredicate builds a leaf pattern whose match test is fn, quantified by
// min/max. See PredicateFunc for the return protocol fn must follow.
//
// Example:
//
//	flat, err := seqex.NewPredicate("flat", 2, "100%", pred.ConstantFit(0.5))
func NewPredicate(name string, min, max any, fn PredicateFunc) (*PredicatePattern, error) {
	q, err := newQuantifier(min, max)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, &QuantifierError{Spec: nil, Reason: "nil predicate function"}
	}
	return &PredicatePattern{patternBase: patternBase{name: name, quant: q}, fn: fn}, nil
}

func (p *PredicatePattern) prepare(inv *invocation, data any, n int) (bool, error) {
	done, ok, err := p.beginPrepare(inv)
	if done || err != nil {
		return ok, err
	}
	p.data, p.n = data, n
	minSz, maxSz, ok := p.quant.resolve(n)
	if !ok {
		return false, nil
	}
	p.minSz, p.maxSz = minSz, maxSz
	p.run = runApplying
	return true, nil
}

func (p *PredicatePattern) tryMatch(left, right int) (c consumed, det Details, err error) {
	if right-left+1 == 0 {
		if p.minSz == 0 {
			return zeroWidth(), nil, nil
		}
		return noMatch(), nil, nil
	}
	n, det, err := p.call(left, right)
	if err != nil {
		return consumed{}, nil, &PredicateError{Pattern: p.name, Err: err}
	}
	if n > right-left+1 {
		return consumed{}, nil, &ContractError{Pattern: p.name, Left: left, Right: right, Consumed: n}
	}
	// n carries the protocol verbatim: positive consumption, zero for
	// definite failure, negative for a shrink hint.
	return consumed{n: n}, det, nil
}

// call invokes the user predicate, converting a panic into an error so the
// engine can still run cleanup for every prepared node.
func (p *PredicatePattern) call(left, right int) (n int, det Details, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, det = 0, nil
			err = fmt.Errorf("predicate panicked: %v", r)
		}
	}()
	return p.fn(p.data, left, right)
}

func (p *PredicatePattern) cleanup() error {
	if !p.beginCleanup() {
		return nil
	}
	p.endCleanup()
	return nil
}
