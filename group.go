package seqex

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/coregx/seqex/seqlen"
)

// groupBase carries the machinery shared by the three combinators and their
// named-subset variants: child prepare/cleanup dispatch, positive-match
// bookkeeping, and min/max aggregation plumbing.
type groupBase struct {
	patternBase
	children []Pattern

	// keys, when non-nil, binds children[i] to the named subset keys[i]
	// instead of the shared sequence.
	keys []string

	// active holds the children whose prepare succeeded for the current
	// invocation, in declaration order. Invocation-scoped, stashed.
	active []Pattern
}

func (g *groupBase) eachChild(fn func(Pattern) bool) {
	for _, c := range g.children {
		if !fn(c) {
			return
		}
	}
}

func (g *groupBase) subsetKeys() []string { return g.keys }

func (g *groupBase) snap() any {
	active := g.active
	g.active = nil
	return active
}

func (g *groupBase) restore(extra any) {
	if extra == nil {
		g.active = nil
		return
	}
	g.active = extra.([]Pattern)
}

// prepareChildren runs the shared part of group prepare: the lifecycle
// entry protocol, then prepare on every child. Every child is prepared even
// after failures, because every prepared child must later be cleaned up.
//
// proceed is true when combinator-specific preparation (min/max
// aggregation) should continue. When proceed is false the group's prepare
// must return (ok, err) as given.
func (g *groupBase) prepareChildren(inv *invocation, data any, n int, allMust bool) (proceed, ok bool, err error) {
	done, ok, err := g.beginPrepare(inv)
	if done || err != nil {
		return false, ok, err
	}
	g.data, g.n = data, n
	g.active = g.active[:0]

	var errs error
	for i, c := range g.children {
		childData, childLen := data, n
		if g.keys != nil {
			var serr error
			childData, childLen, serr = g.subsetFor(data, i)
			if serr != nil {
				errs = multierr.Append(errs, serr)
				continue
			}
		}
		prepared, perr := c.prepare(inv, childData, childLen)
		if perr != nil {
			errs = multierr.Append(errs, perr)
			continue
		}
		if prepared {
			g.active = append(g.active, c)
		}
	}
	if errs != nil {
		return false, false, errs
	}
	if allMust && len(g.active) != len(g.children) {
		return false, false, nil
	}
	if !allMust && len(g.active) == 0 {
		return false, false, nil
	}
	return true, true, nil
}

// subsetFor resolves the named subset child i is bound to.
func (g *groupBase) subsetFor(data any, i int) (any, int, error) {
	subsets, ok := data.(map[string]any)
	if !ok {
		return nil, 0, &SubsetError{Pattern: g.name, Reason: "subset group requires map[string]any data", Err: ErrSubsetUsage}
	}
	key := g.keys[i]
	sub, ok := subsets[key]
	if !ok {
		return nil, 0, &SubsetError{Pattern: g.name, Subset: key, Reason: "not supplied", Err: ErrMissingSubset}
	}
	n, err := seqlen.Of(sub)
	if err != nil {
		return nil, 0, err
	}
	return sub, n, nil
}

// finishPrepare applies the combinator's aggregated bounds, clamped to the
// data length. A false return is the normal "does not apply" signal.
func (g *groupBase) finishPrepare(lo, hi int) bool {
	if hi > g.n {
		hi = g.n
	}
	if lo > g.n || hi < lo {
		return false
	}
	g.minSz, g.maxSz = lo, hi
	g.run = runApplying
	return true
}

// cleanupGroup cleans up every child — including children whose prepare
// failed — then finishes the group's own cleanup. Child errors are
// aggregated so one failing cleanup never skips its siblings.
func (g *groupBase) cleanupGroup() error {
	if !g.beginCleanup() {
		return nil
	}
	var errs error
	for _, c := range g.children {
		errs = multierr.Append(errs, c.cleanup())
	}
	g.active = nil
	g.endCleanup()
	return errs
}

// pushMatch records a positive sub-match of child c starting at left.
// The push goes through the invocation journal so a later backtrack can
// undo it together with everything the child pushed internally.
func (g *groupBase) pushMatch(c Pattern, left int, cons consumed, det Details) {
	g.inv.push(c.base(), left, cons, det)
}

// matchSubsets is the shared tryMatch body for the named-subset variants:
// the group itself is zero-width; each child runs its own offset search
// over its own subset. need selects the combinator rule: OR needs one
// success, AND and SEQ need all.
func (g *groupBase) matchSubsets(left, right int, needAll bool) (consumed, Details, error) {
	if right != left-1 {
		return consumed{}, nil, &ContractError{Pattern: g.name, Left: left, Right: right, Consumed: 0}
	}
	mark := g.inv.mark()
	for _, c := range g.active {
		start, cons, det, err := searchOffsets(c)
		if err != nil {
			g.inv.rewind(mark)
			return consumed{}, nil, err
		}
		if cons.ok() {
			g.pushMatch(c, start, cons, det)
			if !needAll {
				return zeroWidth(), nil, nil
			}
			continue
		}
		if needAll {
			g.inv.rewind(mark)
			return noMatch(), nil, nil
		}
	}
	if needAll {
		return zeroWidth(), nil, nil
	}
	g.inv.rewind(mark)
	return noMatch(), nil, nil
}

// newGroup wires a group node and validates tree-wide invariants.
func newGroup(g *groupBase, self Pattern, name string, children []Pattern, keys []string) error {
	if len(children) == 0 {
		return &QuantifierError{Spec: name, Reason: "group needs at least one child"}
	}
	if keys != nil {
		// A pattern object resolves its bounds against one data length per
		// invocation, so it cannot serve two subsets in the same group.
		bound := map[Pattern]string{}
		for i, c := range children {
			if prev, ok := bound[c]; ok && prev != keys[i] {
				return &SubsetError{
					Pattern: name,
					Subset:  keys[i],
					Reason:  fmt.Sprintf("pattern [%s] already bound to subset %q", c.Name(), prev),
					Err:     ErrSubsetUsage,
				}
			}
			bound[c] = keys[i]
		}
	}
	g.name = name
	g.children = children
	g.keys = keys
	g.ext = g
	return validateTree(self)
}

// aggregated bounds per combinator, over the children that prepared.

// orMinMax: the group can consume whatever any one child can.
func orMinMax(active []Pattern) (int, int) {
	lo, hi := active[0].MinSize(), active[0].MaxSize()
	for _, c := range active[1:] {
		if c.MinSize() < lo {
			lo = c.MinSize()
		}
		if c.MaxSize() > hi {
			hi = c.MaxSize()
		}
	}
	return lo, hi
}

// andMinMax: every child must cover the same span, so the group's range is
// the intersection of the children's ranges.
func andMinMax(active []Pattern) (int, int) {
	lo, hi := active[0].MinSize(), active[0].MaxSize()
	for _, c := range active[1:] {
		if c.MinSize() > lo {
			lo = c.MinSize()
		}
		if c.MaxSize() < hi {
			hi = c.MaxSize()
		}
	}
	return lo, hi
}

// seqMinMax: children consume adjacent spans, so bounds add up.
func seqMinMax(active []Pattern) (int, int) {
	lo, hi := 0, 0
	for _, c := range active {
		lo += c.MinSize()
		hi += c.MaxSize()
	}
	return lo, hi
}
