package notify

import "sync/atomic"

// Readiness is set once when the messaging connection is ready and never
// reset.
type Readiness struct {
	ready atomic.Bool
}

// MarkReady flips the flag. It reports whether this call did the flip.
func (r *Readiness) MarkReady() bool {
	return r.ready.CompareAndSwap(false, true)
}

func (r *Readiness) Ready() bool {
	return r.ready.Load()
}
