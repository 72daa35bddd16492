package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeLeaf is a table-like leaf node: its Run always "recomputes" (refreshes
// from an external source) because it has no handlers, matching real input
// adapters (spec.md §4.2).
type fakeLeaf struct {
	name    string
	rows    []string // current snapshot
	pending []string // rows pushed since the last Run
	delta   []string // tracked delta for this epoch
	invalid bool
	runs    int
}

func (f *fakeLeaf) Name() string   { return f.name }
func (f *fakeLeaf) Flags() Flags   { return ClearsTrackedData | HasValidityCheck }
func (f *fakeLeaf) Initialize(context.Context) error { return nil }
func (f *fakeLeaf) Handlers() map[string]InputHandler { return nil }
func (f *fakeLeaf) Delta() any      { return f.delta }
func (f *fakeLeaf) ClearTracked()   { f.delta = nil }
func (f *fakeLeaf) Cleanup()        {}
func (f *fakeLeaf) Validity() Validity {
	if f.invalid {
		return Invalid
	}
	return Valid
}
func (f *fakeLeaf) Run(ctx context.Context, b *Borrow) (bool, error) {
	f.runs++
	f.delta = f.pending
	f.pending = nil
	updated := len(f.delta) > 0
	return updated, nil
}

// pushDelta simulates a new row arriving at the leaf's source; the next Run
// picks it up as that epoch's tracked delta.
func (f *fakeLeaf) pushDelta(row string) {
	f.rows = append(f.rows, row)
	f.pending = append(f.pending, row)
}

// fakeDerived folds its single input's delta, counting recomputes and
// handled calls separately so tests can assert on strategy selection.
type fakeDerived struct {
	name        string
	input       string
	cache       []string
	recomputes  int
	handles     int
	refuseCount int // when > 0, the handler returns Unhandled this many times then stops refusing
	invalid     bool
}

func (d *fakeDerived) Name() string { return d.name }
func (d *fakeDerived) Flags() Flags { return 0 }
func (d *fakeDerived) Initialize(context.Context) error { return nil }
func (d *fakeDerived) Delta() any    { return nil }
func (d *fakeDerived) ClearTracked() {}
func (d *fakeDerived) Cleanup()      {}
func (d *fakeDerived) Validity() Validity {
	if d.invalid {
		return Invalid
	}
	return Valid
}

func (d *fakeDerived) Run(ctx context.Context, b *Borrow) (bool, error) {
	d.recomputes++
	leaf := b.MustNode(d.input).(*fakeLeaf)
	before := len(d.cache)
	d.cache = append([]string(nil), leaf.rows...)
	return len(d.cache) != before, nil
}

func (d *fakeDerived) Handlers() map[string]InputHandler {
	return map[string]InputHandler{
		d.input: func(ctx context.Context, b *Borrow, delta any) (HandlerOutcome, error) {
			d.handles++
			if d.refuseCount > 0 {
				d.refuseCount--
				return HandlerUnhandled, nil
			}
			rows, _ := delta.([]string)
			if len(rows) == 0 {
				return HandlerUnchanged, nil
			}
			d.cache = append(d.cache, rows...)
			return HandlerUpdated, nil
		},
	}
}

func newFixture(t *testing.T) (*Engine, *fakeLeaf, *fakeDerived) {
	t.Helper()
	e := New()
	leaf := &fakeLeaf{name: "leaf"}
	derived := &fakeDerived{name: "derived", input: "leaf"}
	require.NoError(t, e.Register(leaf))
	require.NoError(t, e.Register(derived))
	require.NoError(t, e.AddEdge("leaf", "derived"))
	require.NoError(t, e.InitializeAll(context.Background()))
	return e, leaf, derived
}

func TestFirstIterationRecomputesEveryNode(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")

	res, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, Completed, res)
	require.Equal(t, 1, leaf.runs)
	require.Equal(t, 1, derived.recomputes, "cold cache must force a recompute even though a handler is registered")
	require.Equal(t, 0, derived.handles)
	require.Equal(t, []string{"p1"}, derived.cache)
}

func TestIdempotentRun(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")
	_, err := e.Run(context.Background(), true)
	require.NoError(t, err)

	before := append([]string(nil), derived.cache...)
	recomputesBefore := derived.recomputes
	handlesBefore := derived.handles

	res, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, Completed, res)
	require.Equal(t, before, derived.cache, "two consecutive runs with no changes must yield identical state")
	require.False(t, e.Changed("derived"))
	require.False(t, e.Changed("leaf"))
	require.Equal(t, recomputesBefore, derived.recomputes, "unchanged inputs must not trigger a recompute")
	require.Equal(t, handlesBefore, derived.handles, "unchanged inputs must not even invoke the handler")
}

func TestHandlerAppliesIncrementalDelta(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")
	_, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, derived.recomputes)

	leaf.pushDelta("p2")
	res, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, Completed, res)
	require.Equal(t, 1, derived.recomputes, "a second delta with a registered handler must not force a recompute")
	require.Equal(t, 1, derived.handles)
	require.Equal(t, []string{"p1", "p2"}, derived.cache)
	require.True(t, e.Changed("derived"))
}

func TestUnhandledFallsBackToRecompute(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")
	_, err := e.Run(context.Background(), true)
	require.NoError(t, err)

	derived.refuseCount = 1
	leaf.pushDelta("p2")
	_, err = e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, derived.handles, "handler is invoked once before declining")
	require.Equal(t, 2, derived.recomputes, "an Unhandled outcome must fall back to a full recompute")
	require.Equal(t, []string{"p1", "p2"}, derived.cache, "recompute equivalence: recompute yields the same state a successful handler would have")
}

func TestInvalidNodeAlwaysRecomputes(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")
	_, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	recomputesBefore := derived.recomputes

	derived.invalid = true
	_, err = e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, recomputesBefore+1, derived.recomputes, "an invalid node recomputes even with no input changes")
}

func TestForceRecomputeBypassesHandlers(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")
	_, err := e.Run(context.Background(), true)
	require.NoError(t, err)

	leaf.pushDelta("p2")
	e.SetForceRecompute()
	require.True(t, e.ForceRecomputeArmed())
	_, err = e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 0, derived.handles, "force-recompute must bypass the handler entirely")
	require.False(t, e.ForceRecomputeArmed(), "force-recompute is consumed by the iteration it armed")
}

func TestReadOnlyIterationCancelsOnRequiredRecompute(t *testing.T) {
	e, leaf, derived := newFixture(t)
	leaf.pushDelta("p1")

	res, err := e.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, Canceled, res, "a cold-cache recompute on a read-only iteration must cancel, not partially apply")
	require.Equal(t, 0, derived.recomputes)
	require.True(t, e.ForceRecomputeArmed(), "a canceled iteration arms force-recompute for the next one")

	res, err = e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, Completed, res)
	require.Equal(t, 1, derived.recomputes)
}

func TestCycleDetected(t *testing.T) {
	e := New()
	a := &fakeDerived{name: "a", input: "b"}
	b := &fakeDerived{name: "b", input: "a"}
	require.NoError(t, e.Register(a))
	require.NoError(t, e.Register(b))
	require.NoError(t, e.AddEdge("b", "a"))
	require.NoError(t, e.AddEdge("a", "b"))

	_, err := e.Run(context.Background(), true)
	require.ErrorIs(t, err, ErrCycle)
}
