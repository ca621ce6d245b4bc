package seqex

// runState tracks where a pattern instance is in its match lifecycle.
// Transitions are strictly sequenced:
//
//	runIdle → runPreparing → runApplying → runCleaning → runIdle
//
// A pattern in runApplying may be re-entered by a nested Match call (a
// predicate matching a sub-range); its in-flight state is stashed and the
// nested invocation runs the full cycle before the stash is restored.
// Re-entering a pattern that is runPreparing or runCleaning means the
// pattern was invoked from inside its own prepare or cleanup code, which is
// always a defect and fails fast with ErrIllegalReentry.
type runState uint8

const (
	runIdle runState = iota
	runPreparing
	runApplying
	runCleaning
)

// consumed is the multi-valued result of a tryMatch call.
//
//	n > 0           — matched n elements
//	n == 0, zero    — zero-width success ("zero but true")
//	n == 0, !zero   — definite failure for this left offset
//	n < 0           — shrink hint: retry with right reduced by -n
type consumed struct {
	n    int
	zero bool
}

// ok reports whether the result is a success (positive or zero-width).
func (c consumed) ok() bool { return c.n > 0 || c.zero }

func matched(n int) consumed { return consumed{n: n} }
func zeroWidth() consumed    { return consumed{zero: true} }
func noMatch() consumed      { return consumed{} }

// Pattern is a node in a match tree: a quantified leaf, a zero-width
// assertion, or a grouping combinator. Patterns are built with the New*
// constructors and matched with Match; the matching methods are unexported,
// so outside implementations are not possible.
//
// A Pattern instance may appear more than once in a tree, and a predicate
// may re-enter an in-flight pattern via a nested Match call. A Pattern must
// not be matched from multiple goroutines at once.
type Pattern interface {
	// Name returns the pattern's capture name, or "" if unnamed.
	Name() string

	// MinSize and MaxSize return the quantifier bounds as resolved against
	// the data length of the most recent invocation.
	MinSize() int
	MaxSize() int

	prepare(inv *invocation, data any, n int) (bool, error)
	tryMatch(left, right int) (consumed, Details, error)
	cleanup() error
	base() *patternBase
	eachChild(fn func(Pattern) bool)
	subsetKeys() []string
}

// invocation is the per-Match bookkeeping shared by every node of the tree
// during one top-level Match call. Its journal records every MatchRecord
// push in order, so a failed backtrack can undo exactly the sub-matches
// made since a given mark, cascading through nested groups.
type invocation struct {
	journal []*patternBase
}

// mark returns a token for the current journal depth.
func (v *invocation) mark() int { return len(v.journal) }

// push stores a MatchRecord on b (if it is named) and journals the push so
// rewind can undo it.
func (v *invocation) push(b *patternBase, left int, c consumed, det Details) {
	if b.name == "" {
		return
	}
	right := left - 1
	if c.n > 0 {
		right = left + c.n - 1
	}
	b.records = append(b.records, MatchRecord{Left: left, Right: right, Details: det})
	v.journal = append(v.journal, b)
}

// rewind pops every record pushed since mark, newest first.
func (v *invocation) rewind(mark int) {
	for i := len(v.journal) - 1; i >= mark; i-- {
		b := v.journal[i]
		b.records = b.records[:len(b.records)-1]
	}
	v.journal = v.journal[:mark]
}

// stashExtra is implemented by node types that carry invocation-scoped
// state beyond the shared base fields (a group's active-children set, an
// assertion's resolved position check). snap must capture and clear the
// state; restore puts a captured value back.
type stashExtra interface {
	snap() any
	restore(extra any)
}

// baseFrame is one stashed invocation: everything a nested re-entry must
// save before reusing the pattern object and restore afterwards.
type baseFrame struct {
	run          runState
	data         any
	n            int
	inv          *invocation
	minSz, maxSz int
	shares       int
	records      []MatchRecord
	extra        any
}

// patternBase carries the lifecycle and invocation-scoped state shared by
// every pattern kind. Concrete nodes embed it.
type patternBase struct {
	name  string
	quant quantifier

	// Invocation-scoped; saved and restored by the stash on re-entry.
	run          runState
	data         any
	n            int
	inv          *invocation
	minSz, maxSz int
	shares       int
	records      []MatchRecord

	stash []baseFrame
	ext   stashExtra
}

func (b *patternBase) Name() string          { return b.name }
func (b *patternBase) MinSize() int          { return b.minSz }
func (b *patternBase) MaxSize() int          { return b.maxSz }
func (b *patternBase) base() *patternBase    { return b }
func (b *patternBase) subsetKeys() []string  { return nil }
func (b *patternBase) eachChild(func(Pattern) bool) {}

// beginPrepare performs the shared entry protocol for prepare.
//
// Returns done=true when the call is a duplicate occurrence of this node
// within the same invocation (the node appears more than once in the tree):
// the prior prepare outcome is reused and a share is counted so the paired
// cleanup call is likewise absorbed.
//
// A node that is mid-apply for a *different* invocation is being re-entered
// from a predicate; its state is stashed. Re-entry during prepare or
// cleanup fails with ErrIllegalReentry.
func (b *patternBase) beginPrepare(inv *invocation) (done, ok bool, err error) {
	if b.run != runIdle && b.inv == inv {
		b.shares++
		return true, b.run == runApplying, nil
	}
	switch b.run {
	case runPreparing, runCleaning:
		return false, false, &ReentryError{Pattern: b.name}
	case runApplying:
		b.stashPush()
	}
	b.run = runPreparing
	b.inv = inv
	b.records = nil
	return false, false, nil
}

// beginCleanup is the shared entry protocol for cleanup. It returns false
// when the call should be a no-op: the node is idle, or the call balances a
// duplicate-occurrence prepare.
func (b *patternBase) beginCleanup() bool {
	if b.run == runIdle {
		return false
	}
	if b.shares > 0 {
		b.shares--
		return false
	}
	b.run = runCleaning
	return true
}

// endCleanup finishes cleanup: either restores the stashed outer invocation
// or returns the node to idle. Stored records deliberately survive so that
// DetailsFor works after Match returns; they are cleared by the next
// beginPrepare.
func (b *patternBase) endCleanup() {
	if len(b.stash) > 0 {
		b.stashPop()
		return
	}
	b.run = runIdle
	b.data = nil
	b.inv = nil
}

func (b *patternBase) stashPush() {
	f := baseFrame{
		run:     b.run,
		data:    b.data,
		n:       b.n,
		inv:     b.inv,
		minSz:   b.minSz,
		maxSz:   b.maxSz,
		shares:  b.shares,
		records: b.records,
	}
	if b.ext != nil {
		f.extra = b.ext.snap()
	}
	b.stash = append(b.stash, f)
	b.records = nil
	b.shares = 0
}

func (b *patternBase) stashPop() {
	f := b.stash[len(b.stash)-1]
	b.stash = b.stash[:len(b.stash)-1]
	b.run = f.run
	b.data = f.data
	b.n = f.n
	b.inv = f.inv
	b.minSz = f.minSz
	b.maxSz = f.maxSz
	b.shares = f.shares
	b.records = f.records
	if b.ext != nil {
		b.ext.restore(f.extra)
	}
}

// checkSpan enforces the tryMatch return protocol for a child result:
// consuming more than the offered span is always a defect in the child's
// predicate.
func checkSpan(c consumed, left, right int, name string) error {
	if c.n > right-left+1 {
		return &ContractError{Pattern: name, Left: left, Right: right, Consumed: c.n}
	}
	return nil
}

// validateTree checks construction-time invariants over a whole tree:
// no two distinct patterns may share a name. The same pattern object
// appearing several times is allowed (its captures accumulate).
func validateTree(root Pattern) error {
	names := map[string]Pattern{}
	var dup error
	walk(root, map[Pattern]bool{}, func(p Pattern) bool {
		name := p.Name()
		if name == "" {
			return true
		}
		if prev, ok := names[name]; ok && prev != p {
			dup = &NameError{Name: name}
			return false
		}
		names[name] = p
		return true
	})
	return dup
}
