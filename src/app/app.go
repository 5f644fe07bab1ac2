package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pack-manager/src/geo"
	"pack-manager/src/hotkey"
	"pack-manager/src/mapview"
	"pack-manager/src/marker"
	"pack-manager/src/notify"
)

type Options struct {
	Surface   *mapview.Surface
	Extents   geo.Extents
	Client    notify.Client
	Readiness *notify.Readiness

	GuildName   string
	ChannelName string
	Mention     string

	ReadClipboard func() (string, error)
	Cooldown      time.Duration
	Sleep         func(time.Duration)
	Log           *zap.SugaredLogger
}

// App ties the marker state to the map surface and the notification path.
// Every method is safe to call from the UI goroutine or the hotkey goroutine.
type App struct {
	state       *marker.State
	surface     *mapview.Surface
	composer    *notify.Composer
	dispatcher  *notify.Dispatcher
	coordinator *hotkey.Coordinator

	guild         string
	channel       string
	readClipboard func() (string, error)
	log           *zap.SugaredLogger
}

func New(opts Options) (*App, error) {
	if opts.Surface == nil {
		return nil, errors.New("app: map surface is required")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	if opts.Readiness == nil {
		opts.Readiness = &notify.Readiness{}
	}

	w, h := opts.Surface.Size()
	tr, err := geo.NewTransform(opts.Extents, float64(w), float64(h))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	state := marker.New(tr, opts.Surface)
	a := &App{
		state:         state,
		surface:       opts.Surface,
		composer:      notify.NewComposer(state, opts.Readiness),
		dispatcher:    notify.NewDispatcher(opts.Client, opts.Mention, opts.Log.Named("notify")),
		guild:         opts.GuildName,
		channel:       opts.ChannelName,
		readClipboard: opts.ReadClipboard,
		log:           opts.Log,
	}
	a.coordinator = hotkey.NewCoordinator(hotkey.Options{
		ReadClipboard: a.clipboardText,
		Parse:         geo.Parse,
		SetPosition:   state.SetPosition,
		Notify:        a.Notify,
		Cooldown:      opts.Cooldown,
		Sleep:         opts.Sleep,
		Log:           opts.Log.Named("hotkey"),
	})
	return a, nil
}

// OnChange registers fn to run after every state mutation, with the map
// surface already updated. fn must not block.
func (a *App) OnChange(fn func(marker.Fields)) { a.state.OnChange(fn) }

func (a *App) Surface() *mapview.Surface { return a.surface }

func (a *App) Fields() marker.Fields { return a.state.Snapshot() }

// SetPositionText parses text and moves the position marker there.
func (a *App) SetPositionText(text string) error {
	w, err := geo.Parse(text)
	if err != nil {
		a.log.Warnw("position not set", "error", err)
		return err
	}
	a.state.SetPosition(w)
	a.log.Infow("position set", "position", geo.Format(w))
	return nil
}

// QuickSetPosition sets the position from the clipboard text.
func (a *App) QuickSetPosition() error {
	text, err := a.clipboardText()
	if err != nil {
		a.log.Warnw("clipboard read failed", "error", err)
		return err
	}
	return a.SetPositionText(text)
}

// ArmDestination makes the next map selection set the destination,
// replacing any existing one.
func (a *App) ArmDestination() {
	a.state.ArmDestinationCapture()
	a.log.Debug("destination capture armed")
}

func (a *App) Armed() bool { return a.state.Armed() }

// SelectPoint forwards a pointer selection on the map. It reports whether
// the selection set the destination.
func (a *App) SelectPoint(p geo.Point) bool {
	used := a.state.HandlePointer(p)
	if used {
		a.log.Infow("destination set", "destination", a.state.Snapshot().Destination)
	}
	return used
}

func (a *App) DeleteDestination() {
	a.state.DeleteDestination()
	a.log.Debug("destination deleted")
}

func (a *App) SetActivity(v string) { a.state.SetActivity(v) }
func (a *App) SetEntity(v string)   { a.state.SetEntity(v) }
func (a *App) SetServer(v string)   { a.state.SetServer(v) }

// Notify composes a payload from the current state and dispatches it to the
// configured server and channel.
func (a *App) Notify(ctx context.Context) error {
	p, err := a.composer.Compose(a.surface.Snapshot)
	if err != nil {
		if errors.Is(err, notify.ErrNotReady) {
			a.log.Warn("discord client not ready yet, notification skipped")
		} else {
			a.log.Errorw("notification not composed", "error", err)
		}
		return err
	}
	return a.dispatcher.Dispatch(ctx, p, a.channel, a.guild)
}

// Hotkey returns the coordinator driven by the global key listener.
func (a *App) Hotkey() *hotkey.Coordinator { return a.coordinator }

func (a *App) Stats() notify.Stats { return a.dispatcher.Stats() }

// Close releases every marker.
func (a *App) Close() {
	a.state.Clear()
	st := a.dispatcher.Stats()
	a.log.Infow("notification stats",
		"dispatched", st.Dispatched, "sent", st.Sent, "failed", st.Failed,
		"not_found", st.NotFound, "rejected", st.Rejected)
}

func (a *App) clipboardText() (string, error) {
	if a.readClipboard == nil {
		return "", errors.New("clipboard reader not configured")
	}
	return a.readClipboard()
}
