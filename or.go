package seqex

// OrPattern is the disjunction combinator: it matches when any one child
// matches, trying children in declaration order and, within each child, the
// widest admissible span first. The first child to succeed wins; later
// children are never consulted.
type OrPattern struct {
	groupBase
}

// NewOr builds a disjunction over children. Group-level prepare succeeds
// when at least one child can apply to the data.
//
// Example:
//
//	either, err := seqex.NewOr("either", spike, plateau)
func NewOr(name string, children ...Pattern) (*OrPattern, error) {
	g := &OrPattern{}
	if err := newGroup(&g.groupBase, g, name, children, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// NewOrSubsets builds a disjunction whose children each match a distinct
// named subset of the data; see MatchSubsets.
func NewOrSubsets(name string, children ...SubsetChild) (*OrPattern, error) {
	g := &OrPattern{}
	patterns, keys := splitSubsets(children)
	if err := newGroup(&g.groupBase, g, name, patterns, keys); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *OrPattern) prepare(inv *invocation, data any, n int) (bool, error) {
	proceed, ok, err := g.prepareChildren(inv, data, n, false)
	if !proceed {
		return ok, err
	}
	if g.keys != nil {
		return g.finishPrepare(0, 0), nil
	}
	lo, hi := orMinMax(g.active)
	return g.finishPrepare(lo, hi), nil
}

// tryMatch searches each child over its own admissible right offsets,
// bounded above by the offered right edge, honoring shrink hints. A child
// reporting definite failure moves the search to the next child rather
// than to a narrower span of the same child.
func (g *OrPattern) tryMatch(left, right int) (consumed, Details, error) {
	if g.keys != nil {
		return g.matchSubsets(left, right, false)
	}
	mark := g.inv.mark()
	for _, c := range g.active {
		cb := c.base()
		r := left + cb.maxSz - 1
		if r > right {
			r = right
		}
		lowest := left + cb.minSz - 1
		for r >= lowest {
			cons, det, err := c.tryMatch(left, r)
			if err != nil {
				g.inv.rewind(mark)
				return consumed{}, nil, err
			}
			if err := checkSpan(cons, left, r, cb.name); err != nil {
				g.inv.rewind(mark)
				return consumed{}, nil, err
			}
			if cons.ok() {
				// Failed attempts undo their own pushes, so the journal
				// holds only the winning child's sub-matches at this point.
				g.pushMatch(c, left, cons, det)
				return cons, nil, nil
			}
			if cons.n == 0 {
				break
			}
			// Shrink hint; a hint crossing the child's minimum ends the
			// loop via the bound check above.
			r += cons.n
		}
	}
	g.inv.rewind(mark)
	return noMatch(), nil, nil
}

func (g *OrPattern) cleanup() error { return g.cleanupGroup() }
