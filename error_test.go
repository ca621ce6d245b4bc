package seqex

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Pattern, error)
		want  error
	}{
		{
			name: "malformed quantifier string",
			build: func() (Pattern, error) {
				return NewAny("a", "abc", 5)
			},
			want: ErrMalformedQuantifier,
		},
		{
			name: "malformed quantifier type",
			build: func() (Pattern, error) {
				return NewAny("a", 1.5, 5)
			},
			want: ErrMalformedQuantifier,
		},
		{
			name: "nil predicate",
			build: func() (Pattern, error) {
				return NewPredicate("p", 1, 5, nil)
			},
			want: ErrMalformedQuantifier,
		},
		{
			name: "duplicate name across children",
			build: func() (Pattern, error) {
				a := Must(NewAny("same", 1, 2))
				b := Must(NewAny("same", 1, 2))
				return NewSeq("s", a, b)
			},
			want: ErrDuplicateName,
		},
		{
			name: "duplicate name in nested group",
			build: func() (Pattern, error) {
				a := Must(NewAny("x", 1, 2))
				inner := Must(NewOr("inner", Must(NewAny("x2", 1, 2))))
				clash := Must(NewAny("inner", 1, 2))
				return NewSeq("s", a, inner, clash)
			},
			want: ErrDuplicateName,
		},
		{
			name: "empty group",
			build: func() (Pattern, error) {
				return NewOr("empty")
			},
			want: ErrMalformedQuantifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil {
				t.Fatal("construction succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSharedObjectIsNotDuplicateName(t *testing.T) {
	// The same named pattern object may appear several times in a tree;
	// only two distinct objects sharing a name are rejected.
	p := Must(NewAny("shared", 1, 2))
	if _, err := NewSeq("s", p, p); err != nil {
		t.Fatalf("NewSeq with shared child error: %v", err)
	}
}

func TestPredicateOverconsumptionIsContractViolation(t *testing.T) {
	greedy := Must(NewPredicate("greedy", 1, 5, func(data any, left, right int) (int, Details, error) {
		return right - left + 2, nil, nil
	}))

	_, err := Match(greedy, []int{1, 2, 3})
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Match() error = %v, want ErrContractViolation", err)
	}
	if !strings.Contains(err.Error(), "[greedy]") {
		t.Errorf("error %q does not name the offending pattern", err)
	}
}

func TestPredicateErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	p := Must(NewPredicate("fragile", 1, 5, func(any, int, int) (int, Details, error) {
		return 0, nil, boom
	}))

	_, err := Match(p, []int{1, 2, 3})
	if !errors.Is(err, ErrPredicateFailure) {
		t.Fatalf("Match() error = %v, want ErrPredicateFailure", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error chain lost the predicate's own error: %v", err)
	}
	if !strings.Contains(err.Error(), "[fragile]") {
		t.Errorf("error %q does not name the offending pattern", err)
	}
}

func TestPredicatePanicIsCaught(t *testing.T) {
	p := Must(NewPredicate("panicky", 1, 5, func(any, int, int) (int, Details, error) {
		panic("unexpected index")
	}))

	_, err := Match(p, []int{1, 2, 3})
	if !errors.Is(err, ErrPredicateFailure) {
		t.Fatalf("Match() error = %v, want ErrPredicateFailure", err)
	}
	if !strings.Contains(err.Error(), "unexpected index") {
		t.Errorf("error %q lost the panic message", err)
	}
	// The pattern must be fully cleaned up despite the panic.
	if p.run != runIdle {
		t.Errorf("state after panic = %d, want idle", p.run)
	}
}

func TestChildErrorCleansUpSiblings(t *testing.T) {
	okChild := Must(NewPredicate("ok", 1, 10, fullSpan))
	bad := Must(NewPredicate("bad", 1, 10, func(any, int, int) (int, Details, error) {
		return 0, nil, fmt.Errorf("sensor offline")
	}))
	g := Must(NewSeq("s", okChild, bad))

	_, err := Match(g, []int{1, 2, 3, 4})
	if err == nil {
		t.Fatal("Match() should propagate the child error")
	}
	for _, p := range []Pattern{g, okChild, bad} {
		if p.base().run != runIdle {
			t.Errorf("pattern [%s] state = %d after error, want idle", p.Name(), p.base().run)
		}
	}
}

func TestIllegalReentryDuringPrepare(t *testing.T) {
	p := Must(NewAny("a", 1, 2))

	// Simulate a pattern invoked from within its own prepare: a second
	// prepare arrives under a different invocation while the first is
	// still in runPreparing.
	if _, _, err := p.beginPrepare(&invocation{}); err != nil {
		t.Fatalf("first beginPrepare error: %v", err)
	}
	_, _, err := p.beginPrepare(&invocation{})
	if !errors.Is(err, ErrIllegalReentry) {
		t.Fatalf("second beginPrepare error = %v, want ErrIllegalReentry", err)
	}

	p.run = runIdle // restore for other tests sharing the package state
}
