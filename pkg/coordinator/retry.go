package coordinator

import "github.com/cuemby/ovncontroller/pkg/engine"

// ApplyRetry arms the engine's force-recompute flag when result reports a
// failed commit, so the next iteration recomputes every writer node from
// scratch rather than attempting to patch a transaction that never landed
// (spec.md §7 "Recoverable, iteration-wide"). This mirrors the teacher's
// reconciler, which logs a failed cycle and simply lets the next ticker
// tick retry rather than tracking partial progress.
func ApplyRetry(result CommitResult, eng *engine.Engine) {
	if result.AnyFailed() {
		eng.SetForceRecompute()
	}
}
