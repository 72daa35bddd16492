/*
Package log provides structured logging for ovncontroller using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific child loggers (engine, nodes/lflow, coordinator, monitor,
...), configurable levels, and a rate limiter for lines emitted from inside
the engine's main loop, where spec.md §7 requires rate-limiting so that a
persistently failing node (schema mismatch, commit failure) cannot flood
the log once per iteration forever.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	engineLog := log.WithComponent("engine")
	engineLog.Info().Int("epoch", epoch).Msg("iteration completed")

	limiter := log.NewLimiter(30 * time.Second)
	if limiter.Allow("lflow:commit-failed") {
		log.WithComponent("coordinator").Error().Err(err).Msg("commit failed")
	}
*/
package log
