package coordinator

import (
	"context"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/metrics"
)

// Committer flushes a batch of mutations for one database. Implementations
// wrap the southbound or virtual-switch client's transaction submission.
type Committer interface {
	Commit(ctx context.Context, db DBKind, mutations []Mutation) error
}

// CommitResult reports which of the two transaction streams committed
// successfully this iteration.
type CommitResult struct {
	SouthboundOK bool
	VswitchOK    bool
}

// AnyFailed reports whether at least one stream failed to commit.
func (r CommitResult) AnyFailed() bool {
	return !r.SouthboundOK || !r.VswitchOK
}

// Commit flushes every staged mutation through committer, one database at a
// time so a failure in one stream does not block the other (spec.md §4.11,
// §7 "Recoverable, iteration-wide": transaction commit failed → force
// recompute next iteration; desired-flow state unaffected).
func (c *Coordinator) Commit(ctx context.Context, committer Committer) CommitResult {
	logger := log.WithComponent("coordinator")
	result := CommitResult{}

	for _, db := range []DBKind{SouthboundDB, VswitchDB} {
		muts := c.PendingFor(db)
		timer := metrics.NewTimer()
		err := committer.Commit(ctx, db, muts)
		timer.ObserveDurationVec(metrics.CommitDuration, db.String())

		ok := err == nil
		outcome := "ok"
		if !ok {
			outcome = "failed"
			logger.Error().Err(fmt.Errorf("coordinator: commit %s: %w", db, err)).Str("db", db.String()).Msg("transaction commit failed, will retry next iteration")
		}
		metrics.CommitsTotal.WithLabelValues(db.String(), outcome).Inc()
		switch db {
		case SouthboundDB:
			result.SouthboundOK = ok
		case VswitchDB:
			result.VswitchOK = ok
		}
	}
	return result
}
