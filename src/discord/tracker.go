package discord

import (
	"sync"
	"time"
)

// guildTracker fires onReady once every guild announced by the gateway has
// been received, or when the timeout passes, whichever comes first.
type guildTracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fired   bool
	onReady func()
}

func newGuildTracker(onReady func()) *guildTracker {
	return &guildTracker{onReady: onReady}
}

func (t *guildTracker) expect(ids []string, timeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return
	}
	t.pending = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t.pending[id] = struct{}{}
	}
	if len(t.pending) == 0 {
		t.fireLocked()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(timeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.fireLocked()
	})
}

func (t *guildTracker) arrived(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.pending == nil {
		return
	}
	delete(t.pending, id)
	if len(t.pending) == 0 {
		t.fireLocked()
	}
}

func (t *guildTracker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *guildTracker) fireLocked() {
	if t.fired {
		return
	}
	t.fired = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.onReady()
}
