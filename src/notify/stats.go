package notify

import "sync/atomic"

// Stats counts dispatch outcomes for the lifetime of a Dispatcher.
type Stats struct {
	Dispatched int64 // jobs accepted by the client loop
	Sent       int64 // both messages delivered
	Failed     int64 // send errors from the platform
	NotFound   int64 // server or channel lookups that came back empty
	Rejected   int64 // client loop full or stopped
}

type counters struct {
	dispatched atomic.Int64
	sent       atomic.Int64
	failed     atomic.Int64
	notFound   atomic.Int64
	rejected   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Dispatched: c.dispatched.Load(),
		Sent:       c.sent.Load(),
		Failed:     c.failed.Load(),
		NotFound:   c.notFound.Load(),
		Rejected:   c.rejected.Load(),
	}
}
