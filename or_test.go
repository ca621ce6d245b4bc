package seqex

import (
	"testing"
)

func TestOrFirstChildWins(t *testing.T) {
	a := Must(NewPredicate("a", 1, 10, fullSpan))
	b := Must(NewPredicate("b", 1, 10, fullSpan))
	g := Must(NewOr("either", a, b))

	res, err := Match(g, []int{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Matched() || res.Consumed() != 4 {
		t.Fatalf("Match() = %+v, want full match", res)
	}
	if len(DetailsFor(g, "a")) != 1 {
		t.Error("winning child a has no record")
	}
	if len(DetailsFor(g, "b")) != 0 {
		t.Error("child b should never have been recorded")
	}
}

func TestOrFallsThroughToLaterChild(t *testing.T) {
	never := Must(NewPredicate("never", 1, 10, func(any, int, int) (int, Details, error) {
		return 0, nil, nil
	}))
	b := Must(NewPredicate("b", 1, 10, fullSpan))
	g := Must(NewOr("either", never, b))

	res, err := Match(g, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Matched() || res.Consumed() != 3 {
		t.Fatalf("Match() = %+v, want consumed 3 via child b", res)
	}
	if len(DetailsFor(g, "b")) != 1 {
		t.Error("child b has no record")
	}
}

func TestOrShrinkHintThenNextChild(t *testing.T) {
	// Child a hints -2 once, then reports definite failure. The engine must
	// move on and still reach b's full-range success.
	aCalls := 0
	a := Must(NewPredicate("a", 1, 10, func(any, int, int) (int, Details, error) {
		aCalls++
		if aCalls == 1 {
			return -2, nil, nil
		}
		return 0, nil, nil
	}))
	b := Must(NewPredicate("b", 1, 10, fullSpan))
	g := Must(NewOr("either", a, b))

	res, err := Match(g, []int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Matched() || res.Start() != 0 || res.Consumed() != 6 {
		t.Fatalf("Match() = start %d consumed %d, want start 0 consumed 6",
			res.Start(), res.Consumed())
	}
	if aCalls != 2 {
		t.Errorf("child a consulted %d times, want 2 (hint, then failure)", aCalls)
	}
}

func TestOrAllChildrenFailLeavesNoRecords(t *testing.T) {
	a := Must(NewPredicate("a", 1, "100%", func(any, int, int) (int, Details, error) {
		return 0, nil, nil
	}))
	b := Must(NewPredicate("b", 1, "100%", func(any, int, int) (int, Details, error) {
		return 0, nil, nil
	}))
	g := Must(NewOr("either", a, b))

	res, err := Match(g, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if res.Matched() {
		t.Fatal("Match() should fail")
	}
	for _, name := range []string{"either", "a", "b"} {
		if recs := DetailsFor(g, name); len(recs) != 0 {
			t.Errorf("pattern %q has %d residual records", name, len(recs))
		}
	}
}

func TestOrPrepareNeedsOneChild(t *testing.T) {
	// A child whose quantifier cannot resolve is excluded, but the group
	// still applies with the remaining child.
	tooBig := Must(NewPredicate("big", 50, 60, fullSpan))
	fits := Must(NewPredicate("fits", 1, 3, fullSpan))
	g := Must(NewOr("either", tooBig, fits))

	res, err := Match(g, []int{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Matched() || res.Consumed() != 3 {
		t.Fatalf("Match() = %+v, want consumed 3 via the applicable child", res)
	}
}

func TestOrAllChildrenUnpreparable(t *testing.T) {
	a := Must(NewPredicate("a", 50, 60, fullSpan))
	b := Must(NewPredicate("b", 70, 80, fullSpan))
	g := Must(NewOr("either", a, b))

	res, err := Match(g, []int{1, 2})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if res.Matched() {
		t.Error("Match() should fail when no child can prepare")
	}
}

func TestOrChildBoundsRespected(t *testing.T) {
	// The narrow child cannot cover the whole span; OR must report its
	// shorter success rather than stretch it.
	narrow := Must(NewPredicate("narrow", 1, 2, fullSpan))
	g := Must(NewOr("either", narrow))

	res, err := Match(g, []int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Matched() || res.Consumed() != 2 {
		t.Fatalf("Match() = %+v, want consumed 2", res)
	}
}
