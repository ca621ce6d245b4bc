package seqex

// SeqPattern is the sequence combinator: children match adjacent spans in
// declaration order. Matching is greedy with right-to-left backtracking
// within each child: every child first tries to consume as much as the
// remaining children's minimums allow, then shrinks one element at a time
// until the remainder of the sequence can also match.
type SeqPattern struct {
	groupBase
}

// NewSeq builds a sequence over children. Group-level prepare succeeds only
// when every child can apply to the data.
//
// Example:
//
//	ramp, err := seqex.NewSeq("ramp", flat, rising, flat2)
func NewSeq(name string, children ...Pattern) (*SeqPattern, error) {
	g := &SeqPattern{}
	if err := newGroup(&g.groupBase, g, name, children, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// NewSeqSubsets builds a sequence whose children each match a distinct
// named subset of the data; see MatchSubsets. With no shared sequence to
// split, the children are simply matched in order, each over its own
// subset.
func NewSeqSubsets(name string, children ...SubsetChild) (*SeqPattern, error) {
	g := &SeqPattern{}
	patterns, keys := splitSubsets(children)
	if err := newGroup(&g.groupBase, g, name, patterns, keys); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *SeqPattern) prepare(inv *invocation, data any, n int) (bool, error) {
	proceed, ok, err := g.prepareChildren(inv, data, n, true)
	if !proceed {
		return ok, err
	}
	if g.keys != nil {
		return g.finishPrepare(0, 0), nil
	}
	lo, hi := seqMinMax(g.active)
	return g.finishPrepare(lo, hi), nil
}

func (g *SeqPattern) tryMatch(left, right int) (consumed, Details, error) {
	if g.keys != nil {
		return g.matchSubsets(left, right, true)
	}
	mark := g.inv.mark()
	cons, err := g.matchFrom(0, left, right)
	if err != nil || !cons.ok() {
		g.inv.rewind(mark)
	}
	return cons, nil, err
}

// matchFrom matches children g.active[i:] over [left, right].
//
// The base case clamps the candidate size to the last child's own bounds
// and applies it once, propagating success, failure or shrink hint
// verbatim. The general case reserves the remaining children's minimum
// sizes, offers this child everything else, and backtracks by shrinking
// this child's size; a shrink hint from the remainder narrows the shared
// right edge instead, without re-shrinking this child.
func (g *SeqPattern) matchFrom(i, left, right int) (consumed, error) {
	c := g.active[i]
	cb := c.base()
	span := right - left + 1

	if i == len(g.active)-1 {
		return g.matchLast(c, left, span)
	}

	reserve := 0
	for _, rest := range g.active[i+1:] {
		reserve += rest.base().minSz
	}

	size := span - reserve
	if size > cb.maxSz {
		size = cb.maxSz
	}

	for size >= cb.minSz {
		childMark := g.inv.mark()
		cons, det, err := c.tryMatch(left, left+size-1)
		if err != nil {
			return consumed{}, err
		}
		if err := checkSpan(cons, left, left+size-1, cb.name); err != nil {
			return consumed{}, err
		}
		if cons.n == 0 && !cons.zero {
			// Definite failure: no narrower span works at this left.
			return noMatch(), nil
		}
		if cons.n < 0 {
			size += cons.n
			continue
		}

		// The child may have covered less than offered; split at what it
		// actually consumed.
		got := cons.n
		g.pushMatch(c, left, cons, det)

		restRight := right
		for {
			restCons, err := g.matchFrom(i+1, left+got, restRight)
			if err != nil {
				return consumed{}, err
			}
			if restCons.ok() {
				total := got + restCons.n
				if total == 0 {
					return zeroWidth(), nil
				}
				return matched(total), nil
			}
			if restCons.n < 0 {
				restRight += restCons.n
				if restRight-(left+got)+1 < reserve {
					break
				}
				continue
			}
			break
		}

		// Remainder failed everywhere: undo this child's record and retry
		// it one element narrower than it actually consumed.
		g.inv.rewind(childMark)
		size = got - 1
	}
	return noMatch(), nil
}

// matchLast applies the final child once over the widest span its own
// bounds admit.
func (g *SeqPattern) matchLast(c Pattern, left, span int) (consumed, error) {
	cb := c.base()
	size := span
	if size > cb.maxSz {
		size = cb.maxSz
	}
	if size < cb.minSz {
		return noMatch(), nil
	}
	cons, det, err := c.tryMatch(left, left+size-1)
	if err != nil {
		return consumed{}, err
	}
	if err := checkSpan(cons, left, left+size-1, cb.name); err != nil {
		return consumed{}, err
	}
	if cons.ok() {
		g.pushMatch(c, left, cons, det)
	}
	return cons, nil
}

func (g *SeqPattern) cleanup() error { return g.cleanupGroup() }

// SubsetChild binds a child pattern to the named subset it should match.
// Build values with Sub.
type SubsetChild struct {
	Subset  string
	Pattern Pattern
}

// Sub pairs a subset name with the pattern that should match it.
//
// Example:
//
//	g, err := seqex.NewAndSubsets("both",
//	    seqex.Sub("price", pricePattern),
//	    seqex.Sub("volume", volumePattern),
//	)
func Sub(key string, p Pattern) SubsetChild {
	return SubsetChild{Subset: key, Pattern: p}
}

func splitSubsets(children []SubsetChild) ([]Pattern, []string) {
	patterns := make([]Pattern, len(children))
	keys := make([]string, len(children))
	for i, sc := range children {
		patterns[i] = sc.Pattern
		keys[i] = sc.Subset
	}
	return patterns, keys
}
