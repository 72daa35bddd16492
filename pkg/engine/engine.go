package engine

import (
	"context"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/metrics"
	"github.com/rs/zerolog"
)

// RunResult is the outcome of one call to Engine.Run (spec.md §4.1
// "Completion").
type RunResult int

const (
	Completed RunResult = iota
	Canceled
)

func (r RunResult) String() string {
	if r == Completed {
		return "completed"
	}
	return "canceled"
}

// nodeState is the engine's bookkeeping for one registered node, separate
// from the node's own payload.
type nodeState struct {
	node       Node
	inputs     []string // ordered input node names
	state      State
	lastEpoch  uint64 // epoch this node was last computed at
	changedAt  uint64 // epoch this node was last observed Updated
}

// Engine runs the registered node graph one iteration at a time (spec.md
// §4.1).
type Engine struct {
	nodes   map[string]Node
	states  map[string]*nodeState
	order   []string // registration order; traversal order is derived from edges

	epoch uint64

	forceRecompute bool

	stopwatch *Stopwatch

	log zerolog.Logger
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		nodes:     make(map[string]Node),
		states:    make(map[string]*nodeState),
		stopwatch: NewStopwatch(),
		log:       log.WithComponent("engine"),
	}
}

// Register adds a node to the graph. Must be called before Run.
func (e *Engine) Register(n Node) error {
	name := n.Name()
	if _, exists := e.nodes[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	e.nodes[name] = n
	e.states[name] = &nodeState{node: n}
	e.order = append(e.order, name)
	return nil
}

// AddEdge declares that "to" takes "input" as one of its ordered inputs
// (spec.md §3 "a list of input edges (ordered...)"). Edges must be added
// after both endpoints are registered.
func (e *Engine) AddEdge(input, to string) error {
	if _, ok := e.nodes[input]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, input)
	}
	st, ok := e.states[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, to)
	}
	st.inputs = append(st.inputs, input)
	return nil
}

// InitializeAll calls Initialize on every registered node, in registration
// order.
func (e *Engine) InitializeAll(ctx context.Context) error {
	for _, name := range e.order {
		if err := e.nodes[name].Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", name, err)
		}
	}
	return nil
}

// CleanupAll calls Cleanup on every registered node, in reverse
// registration order.
func (e *Engine) CleanupAll() {
	for i := len(e.order) - 1; i >= 0; i-- {
		e.nodes[e.order[i]].Cleanup()
	}
}

// SetForceRecompute arms the process-wide force-recompute signal (spec.md
// §3). It takes effect on the next call to Run and is then consumed.
func (e *Engine) SetForceRecompute() {
	e.forceRecompute = true
	metrics.ForceRecompute.Set(1)
}

// ForceRecomputeArmed reports whether force-recompute is currently set.
func (e *Engine) ForceRecomputeArmed() bool {
	return e.forceRecompute
}

// Epoch returns the current engine-run epoch.
func (e *Engine) Epoch() uint64 { return e.epoch }

// State returns the named node's state as of the most recently completed
// traversal step this epoch.
func (e *Engine) State(name string) State {
	if st, ok := e.states[name]; ok {
		return st.state
	}
	return Unchanged
}

// Changed reports whether the named node was Updated during the current
// epoch.
func (e *Engine) Changed(name string) bool {
	return e.State(name) == Updated
}

func (e *Engine) borrow() *Borrow { return &Borrow{engine: e} }

// Run executes one iteration of the engine (spec.md §4.1). recomputeAllowed
// is false on a read-only iteration (e.g. the southbound transaction is not
// currently writable): if the traversal would require recomputing a node
// under those conditions, the iteration is abandoned (Canceled) rather than
// partially applied.
func (e *Engine) Run(ctx context.Context, recomputeAllowed bool) (RunResult, error) {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.EngineIterationDuration)
	}()

	forceAll := e.forceRecompute
	e.forceRecompute = false
	metrics.ForceRecompute.Set(0)

	e.epoch++
	for _, name := range e.order {
		st := e.states[name]
		st.state = Unchanged
		if e.nodes[name].Flags().Has(ClearsTrackedData) {
			e.nodes[name].ClearTracked()
		}
	}

	b := e.borrow()
	visited := make(map[string]bool, len(e.order))
	inProgress := make(map[string]bool, len(e.order))
	canceled := false

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if inProgress[name] {
			return fmt.Errorf("%w: at %s", ErrCycle, name)
		}
		inProgress[name] = true
		defer func() { inProgress[name] = false }()

		st := e.states[name]
		for _, in := range st.inputs {
			if err := visit(in); err != nil {
				return err
			}
			if canceled {
				return errCanceled
			}
		}
		visited[name] = true

		var updatedInputs []string
		for _, in := range st.inputs {
			if e.states[in].state == Updated {
				updatedInputs = append(updatedInputs, in)
			}
		}

		n := e.nodes[name]
		recompute := forceAll || n.Validity() == Invalid || len(n.Handlers()) == 0 || st.lastEpoch == 0
		if !recompute {
			handlers := n.Handlers()
			for _, in := range updatedInputs {
				if _, ok := handlers[in]; !ok {
					recompute = true
					break
				}
			}
		}

		runTimer := metrics.NewTimer()
		var updated bool
		var err error

		if recompute {
			if len(st.inputs) > 0 && len(updatedInputs) == 0 && !forceAll && n.Validity() == Valid && st.lastEpoch != 0 {
				// Nothing changed upstream and nothing forces a
				// recompute: the idempotent no-op path (spec.md §8
				// "Idempotent engine-run"). Skip calling Run entirely.
				// A node with no inputs never takes this path: its Run
				// is how it refreshes from its external source.
				st.state = Unchanged
				metrics.NodeRunsTotal.WithLabelValues(name, "skipped").Inc()
				return nil
			}
			if !recomputeAllowed {
				canceled = true
				metrics.NodeRunsTotal.WithLabelValues(name, "canceled").Inc()
				return errCanceled
			}
			updated, err = n.Run(ctx, b)
			metrics.NodeRunsTotal.WithLabelValues(name, "recompute").Inc()
		} else {
			handlers := n.Handlers()
			anyUpdated := false
			fellBackToRecompute := false
			for _, in := range updatedInputs {
				h := handlers[in]
				outcome, herr := h(ctx, b, e.nodes[in].Delta())
				if herr != nil {
					err = herr
					break
				}
				if outcome == HandlerUnhandled {
					if !recomputeAllowed {
						canceled = true
						metrics.NodeRunsTotal.WithLabelValues(name, "canceled").Inc()
						return errCanceled
					}
					updated, err = n.Run(ctx, b)
					anyUpdated = anyUpdated || updated
					fellBackToRecompute = true
					break
				}
				if outcome == HandlerUpdated {
					anyUpdated = true
				}
			}
			if fellBackToRecompute {
				metrics.NodeRunsTotal.WithLabelValues(name, "recompute").Inc()
			} else {
				updated = anyUpdated
				metrics.NodeRunsTotal.WithLabelValues(name, "handle").Inc()
			}
		}
		runTimer.ObserveDurationVec(metrics.NodeRunDuration, name)
		e.stopwatch.Record(name, runTimer.Duration())

		if err != nil {
			return fmt.Errorf("node %s: %w", name, err)
		}

		st.lastEpoch = e.epoch
		if updated {
			st.state = Updated
			st.changedAt = e.epoch
		} else {
			st.state = Unchanged
		}
		return nil
	}

	var firstErr error
	for _, name := range e.order {
		if err := visit(name); err != nil {
			if err == errCanceled {
				break
			}
			firstErr = err
			break
		}
	}

	if canceled {
		e.SetForceRecompute()
		e.log.Warn().Str("event", "iteration_canceled").Msg("read-only iteration canceled, force-recompute armed for next iteration")
		metrics.EngineIterationsTotal.WithLabelValues("canceled").Inc()
		return Canceled, nil
	}
	if firstErr != nil {
		metrics.EngineIterationsTotal.WithLabelValues("error").Inc()
		return Completed, firstErr
	}
	metrics.EngineIterationsTotal.WithLabelValues("completed").Inc()
	return Completed, nil
}

// SetLogger replaces the engine's logger, which New sets to the "engine"
// component logger.
func (e *Engine) SetLogger(l zerolog.Logger) { e.log = l }
