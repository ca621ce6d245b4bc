package seqex

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrapper types below carry the offending pattern name and
// unwrap to these, so callers can test with errors.Is.
var (
	// ErrMalformedQuantifier indicates an unusable min/max or position spec.
	// Raised at tree-construction time.
	ErrMalformedQuantifier = errors.New("malformed quantifier")

	// ErrDuplicateName indicates two distinct patterns in one tree share a
	// capture name. Raised at tree-construction time.
	ErrDuplicateName = errors.New("duplicate pattern name")

	// ErrContractViolation indicates a pattern consumed more elements than
	// it was offered, or a zero-width assertion was invoked over a nonzero
	// span. Always a defect in a predicate or in a caller, never a normal
	// match failure.
	ErrContractViolation = errors.New("match contract violation")

	// ErrPredicateFailure wraps an error returned — or a panic raised — by
	// a user predicate during matching.
	ErrPredicateFailure = errors.New("predicate failure")

	// ErrIllegalReentry indicates a pattern was invoked from within its own
	// prepare or cleanup code.
	ErrIllegalReentry = errors.New("illegal pattern re-entry")

	// ErrMissingSubset indicates a subset group was matched against a map
	// lacking one of the subset names its children are bound to.
	ErrMissingSubset = errors.New("missing named subset")

	// ErrSubsetUsage indicates a structural misuse of subset matching: a
	// non-subset root passed to MatchSubsets, non-map data offered to a
	// subset group, or one pattern object bound to several subsets.
	ErrSubsetUsage = errors.New("invalid subset usage")
)

// QuantifierError reports an unusable quantifier or position spec.
type QuantifierError struct {
	Spec   any
	Reason string
}

func (e *QuantifierError) Error() string {
	return fmt.Sprintf("malformed quantifier spec %v: %s", e.Spec, e.Reason)
}

func (e *QuantifierError) Unwrap() error { return ErrMalformedQuantifier }

// NameError reports a capture name used by two distinct patterns in one
// tree.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("duplicate pattern name [%s]", e.Name)
}

func (e *NameError) Unwrap() error { return ErrDuplicateName }

// ContractError reports a tryMatch result that broke the return protocol.
type ContractError struct {
	Pattern  string
	Left     int
	Right    int
	Consumed int
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("pattern [%s]: consumed %d elements over span [%d,%d] (%d available)",
		e.Pattern, e.Consumed, e.Left, e.Right, e.Right-e.Left+1)
}

func (e *ContractError) Unwrap() error { return ErrContractViolation }

// PredicateError wraps an error or recovered panic from a user predicate,
// identifying the pattern it belongs to.
type PredicateError struct {
	Pattern string
	Err     error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("pattern [%s]: %v", e.Pattern, e.Err)
}

func (e *PredicateError) Unwrap() error { return e.Err }

// Is reports ErrPredicateFailure in addition to the wrapped chain.
func (e *PredicateError) Is(target error) bool { return target == ErrPredicateFailure }

// ReentryError reports a pattern invoked from inside its own prepare or
// cleanup.
type ReentryError struct {
	Pattern string
}

func (e *ReentryError) Error() string {
	return fmt.Sprintf("pattern [%s]: re-entered during prepare or cleanup", e.Pattern)
}

func (e *ReentryError) Unwrap() error { return ErrIllegalReentry }

// SubsetError reports a subset dispatch problem. Err distinguishes a subset
// absent from the supplied data (ErrMissingSubset) from a structural misuse
// of the subset API (ErrSubsetUsage).
type SubsetError struct {
	Pattern string
	Subset  string
	Reason  string
	Err     error
}

func (e *SubsetError) Error() string {
	if e.Subset != "" {
		return fmt.Sprintf("pattern [%s]: subset %q: %s", e.Pattern, e.Subset, e.Reason)
	}
	return fmt.Sprintf("pattern [%s]: %s", e.Pattern, e.Reason)
}

func (e *SubsetError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMissingSubset
}
