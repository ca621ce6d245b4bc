package seqex

// AndPattern is the conjunction combinator: every child must match the same
// span. When a child matches a shorter span than offered, the group clamps
// its target to that length and restarts all children from the first, so
// the result is a span every child agrees on.
type AndPattern struct {
	groupBase
}

// NewAnd builds a conjunction over children. Group-level prepare succeeds
// only when every child can apply to the data.
//
// Example:
//
//	both, err := seqex.NewAnd("both", rising, smooth)
func NewAnd(name string, children ...Pattern) (*AndPattern, error) {
	g := &AndPattern{}
	if err := newGroup(&g.groupBase, g, name, children, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// NewAndSubsets builds a conjunction whose children each match a distinct
// named subset of the data; see MatchSubsets.
func NewAndSubsets(name string, children ...SubsetChild) (*AndPattern, error) {
	g := &AndPattern{}
	patterns, keys := splitSubsets(children)
	if err := newGroup(&g.groupBase, g, name, patterns, keys); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *AndPattern) prepare(inv *invocation, data any, n int) (bool, error) {
	proceed, ok, err := g.prepareChildren(inv, data, n, true)
	if !proceed {
		return ok, err
	}
	if g.keys != nil {
		return g.finishPrepare(0, 0), nil
	}
	lo, hi := andMinMax(g.active)
	return g.finishPrepare(lo, hi), nil
}

// tryMatch applies every child at the same range. The target span only
// ever shrinks — on a shorter child match or a shrink hint — so the restart
// loop terminates in at most span-minSize+1 rounds.
func (g *AndPattern) tryMatch(left, right int) (consumed, Details, error) {
	if g.keys != nil {
		return g.matchSubsets(left, right, true)
	}
	mark := g.inv.mark()
	target := right - left + 1

restart:
	for target >= g.minSz {
		g.inv.rewind(mark)
		if target == 0 {
			return g.tryZeroWidth(left, mark)
		}
		r := left + target - 1
		for _, c := range g.active {
			cons, det, err := c.tryMatch(left, r)
			if err != nil {
				g.inv.rewind(mark)
				return consumed{}, nil, err
			}
			if err := checkSpan(cons, left, r, c.Name()); err != nil {
				g.inv.rewind(mark)
				return consumed{}, nil, err
			}
			switch {
			case cons.n == target:
				g.pushMatch(c, left, cons, det)
			case cons.n > 0 || cons.zero:
				// Shorter match: clamp the group target to what this child
				// actually covered and re-apply everyone from the first.
				target = cons.n
				continue restart
			case cons.n < 0:
				target += cons.n
				continue restart
			default:
				g.inv.rewind(mark)
				return noMatch(), nil, nil
			}
		}
		return matched(target), nil, nil
	}
	g.inv.rewind(mark)
	return noMatch(), nil, nil
}

// tryZeroWidth handles the all-zero-width target: every child is asked for
// an empty span and all must report zero-but-true.
func (g *AndPattern) tryZeroWidth(left, mark int) (consumed, Details, error) {
	for _, c := range g.active {
		cons, det, err := c.tryMatch(left, left-1)
		if err != nil {
			g.inv.rewind(mark)
			return consumed{}, nil, err
		}
		if !cons.zero {
			g.inv.rewind(mark)
			return noMatch(), nil, nil
		}
		g.pushMatch(c, left, cons, det)
	}
	return zeroWidth(), nil, nil
}

func (g *AndPattern) cleanup() error { return g.cleanupGroup() }
