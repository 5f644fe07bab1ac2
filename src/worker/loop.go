package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job runs on the loop goroutine. ctx is cancelled when the loop stops.
type Job func(ctx context.Context)

// Loop is a single goroutine that owns a resource which must not be touched
// from arbitrary goroutines. Work is posted through a bounded queue with
// strict back-pressure: Submit never blocks.
type Loop struct {
	jobs   chan Job
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New starts a loop. Queue size defaults to 8 when size<=0.
func New(size int, log *zap.SugaredLogger) *Loop {
	if size <= 0 {
		size = 8
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{jobs: make(chan Job, size), log: log, ctx: ctx, cancel: cancel}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for j := range l.jobs {
		l.invoke(j)
	}
}

func (l *Loop) invoke(j Job) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorf("worker: job panicked: %v", r)
		}
	}()
	j(l.ctx)
}

// Submit enqueues j if there is room. Returns false if the queue is full or
// the loop is closed.
func (l *Loop) Submit(j Job) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	select {
	case l.jobs <- j:
		return true
	default:
		l.log.Warnf("worker: queue full (%d), job dropped", cap(l.jobs))
		return false
	}
}

// Close cancels running jobs, drains the queue and waits for the goroutine.
// Queued jobs still run, with a cancelled context.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.cancel()
	close(l.jobs)
	l.mu.Unlock()
	l.wg.Wait()
}
