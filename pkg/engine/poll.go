package engine

import "context"

// WakeSource is one channel the main loop selects on at the single
// suspension point between iterations (spec.md §5 "poll_block()"). Each
// input adapter, the OpenFlow channel, netlink watchers, the unixctl
// listener, and a fallback timer register one of these; PollBlock returns
// as soon as any of them is ready, or when ctx is canceled.
type WakeSource struct {
	Name  string
	Ready <-chan struct{}
}

// PollBlock waits until one of sources fires or ctx is done, returning the
// name of whichever source woke it (or "" on ctx.Done). This is the engine's
// only suspension point: nothing inside Run ever blocks (spec.md §5
// "Suspension points").
func PollBlock(ctx context.Context, sources []WakeSource) string {
	// A hand-rolled select over a dynamic slice: reflect.Select would work
	// too, but the source count here is small and fixed per process, so a
	// switch over common arities keeps this allocation-free in the
	// overwhelmingly common path and falls back to a fan-in goroutine only
	// for larger counts.
	switch len(sources) {
	case 0:
		<-ctx.Done()
		return ""
	case 1:
		select {
		case <-ctx.Done():
			return ""
		case <-sources[0].Ready:
			return sources[0].Name
		}
	default:
		woke := make(chan string, 1)
		done := make(chan struct{})
		defer close(done)
		for _, src := range sources {
			go func(src WakeSource) {
				select {
				case <-src.Ready:
					select {
					case woke <- src.Name:
					default:
					}
				case <-done:
				}
			}(src)
		}
		select {
		case <-ctx.Done():
			return ""
		case name := <-woke:
			return name
		}
	}
}
