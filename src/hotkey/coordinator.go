package hotkey

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pack-manager/src/geo"
)

const (
	DefaultCooldown      = time.Second
	DefaultNotifyTimeout = 15 * time.Second
)

type Options struct {
	ReadClipboard func() (string, error)
	Parse         func(string) (geo.World, error)
	SetPosition   func(geo.World)
	Notify        func(ctx context.Context) error
	Cooldown      time.Duration
	// NotifyTimeout bounds a single Notify call.
	NotifyTimeout time.Duration
	Sleep         func(time.Duration)
	Log           *zap.SugaredLogger
}

// Coordinator turns a hotkey press into clipboard -> parse -> set position ->
// notify. Only one trigger runs at a time, and the cooldown counts as part of
// the run.
type Coordinator struct {
	opts     Options
	enabled  atomic.Bool
	inFlight atomic.Bool
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Parse == nil {
		opts.Parse = geo.Parse
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	c := &Coordinator{opts: opts}
	c.enabled.Store(true)
	return c
}

func (c *Coordinator) SetEnabled(on bool) { c.enabled.Store(on) }

func (c *Coordinator) Enabled() bool { return c.enabled.Load() }

// OnTrigger runs one hotkey chain. It returns immediately when disabled or
// when another trigger is still running.
func (c *Coordinator) OnTrigger(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.opts.Log.Debug("hotkey trigger dropped, previous trigger still running")
		return
	}
	defer c.inFlight.Store(false)
	defer c.opts.Sleep(c.opts.Cooldown)

	c.run(ctx)
}

func (c *Coordinator) run(ctx context.Context) {
	log := c.opts.Log

	text, err := c.opts.ReadClipboard()
	if err != nil {
		log.Warnw("hotkey: cannot read clipboard", "error", err)
		return
	}

	w, err := c.opts.Parse(text)
	if err != nil {
		var pe *geo.ParseError
		if errors.As(err, &pe) {
			log.Warnw("hotkey: clipboard does not hold a coordinate", "text", pe.Text, "reason", pe.Reason)
		} else {
			log.Warnw("hotkey: parse failed", "error", err)
		}
		return
	}

	c.opts.SetPosition(w)
	log.Infow("hotkey: position set from clipboard", "position", geo.Format(w))

	if c.opts.Notify == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.NotifyTimeout)
	defer cancel()
	if err := c.opts.Notify(ctx); err != nil {
		log.Warnw("hotkey: notification not sent", "error", err)
	}
}
