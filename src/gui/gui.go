package gui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"pack-manager/src/app"
	"pack-manager/src/config"
	"pack-manager/src/geo"
	"pack-manager/src/marker"
	"pack-manager/src/notify"
	"pack-manager/src/tray"
)

const (
	WindowTitle   = "Pack - Manager"
	AppID         = "pack.manager"
	notifyTimeout = 15 * time.Second
)

type RunOptions struct {
	// ShowRequests raises the window each time a value arrives.
	ShowRequests <-chan struct{}
	Log          *zap.SugaredLogger
}

// Window holds the widgets bound to one App.
type Window struct {
	app *app.App
	log *zap.SugaredLogger
	win fyne.Window

	hotkeyCheck *widget.Check
	mapView     *mapWidget
	posEntry    *widget.Entry
	destLabel   *widget.Label
	status      *widget.Label

	// cleared once the fyne loop has stopped
	live atomic.Bool
}

// Build creates the window for a inside fa. Run calls it; tests use it with
// the fyne test app.
func Build(fa fyne.App, a *app.App, cfg *config.Config, log *zap.SugaredLogger) *Window {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := &Window{app: a, log: log, win: fa.NewWindow(WindowTitle)}
	w.live.Store(true)

	w.hotkeyCheck = widget.NewCheck(fmt.Sprintf("Hotkey (%s)", cfg.Hotkey), func(on bool) {
		a.Hotkey().SetEnabled(on)
		log.Infow("hotkey toggled", "enabled", on)
	})
	w.hotkeyCheck.SetChecked(a.Hotkey().Enabled())

	notifyBtn := widget.NewButton("Discord Notification", w.notify)

	w.mapView = newMapWidget(a.Surface().Render(), func(p geo.Point) {
		if a.SelectPoint(p) {
			w.setStatus("Next destination set")
		}
	})

	quickBtn := widget.NewButton("Quick set Position", func() {
		if err := a.QuickSetPosition(); err != nil {
			w.setStatus(describe(err))
		}
	})
	w.posEntry = widget.NewEntry()
	w.posEntry.SetPlaceHolder("x, y")
	setPos := func() {
		if err := a.SetPositionText(w.posEntry.Text); err != nil {
			w.setStatus(describe(err))
		}
	}
	w.posEntry.OnSubmitted = func(string) { setPos() }
	setPosBtn := widget.NewButton("Set Current Position", setPos)

	serverSel := widget.NewSelect(cfg.Servers, a.SetServer)
	serverSel.PlaceHolder = "Server"
	entitySel := widget.NewSelect(cfg.Entities, a.SetEntity)
	entitySel.PlaceHolder = "Entity"
	activitySel := widget.NewSelect(cfg.Activities, a.SetActivity)
	activitySel.PlaceHolder = "Activity"

	setDestBtn := widget.NewButton("Set Next Destination", func() {
		a.ArmDestination()
		w.setStatus("Click the map to place the next destination")
	})
	delDestBtn := widget.NewButton("Delete Next Destination", a.DeleteDestination)

	w.destLabel = widget.NewLabel("Next Destination:")
	w.status = widget.NewLabel("")

	top := container.NewHBox(w.hotkeyCheck, notifyBtn)
	bottom := container.NewVBox(
		container.NewHBox(quickBtn, setPosBtn),
		w.posEntry,
		container.NewGridWithColumns(3, serverSel, entitySel, activitySel),
		container.NewHBox(setDestBtn, delDestBtn),
		w.destLabel,
		w.status,
	)
	w.win.SetContent(container.NewBorder(top, bottom, nil, nil, w.mapView))

	a.OnChange(func(f marker.Fields) {
		if !w.live.Load() {
			return
		}
		fyne.Do(func() {
			w.mapView.SetImage(a.Surface().Render())
			w.destLabel.SetText("Next Destination: " + f.Destination)
			if f.Position != "" && w.posEntry.Text != f.Position {
				w.posEntry.SetText(f.Position)
			}
		})
	})
	return w
}

// Run shows the main window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, a *app.App, cfg *config.Config, opts RunOptions) {
	fa := fyneapp.NewWithID(AppID)
	w := Build(fa, a, cfg, opts.Log)
	tray.Install(fa, tray.Actions{
		Show: func() {
			w.win.Show()
			w.win.RequestFocus()
		},
		Notify: w.notify,
		ToggleHotkey: func() bool {
			w.hotkeyCheck.SetChecked(!w.hotkeyCheck.Checked)
			return w.hotkeyCheck.Checked
		},
		HotkeyOn: a.Hotkey().Enabled,
	})

	closed := make(chan struct{})
	defer close(closed)
	defer w.live.Store(false)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(fa.Quit)
		case <-closed:
		}
	}()

	if opts.ShowRequests != nil {
		go func() {
			for {
				select {
				case <-opts.ShowRequests:
					fyne.Do(func() {
						w.win.Show()
						w.win.RequestFocus()
					})
				case <-closed:
					return
				}
			}
		}()
	}

	w.win.ShowAndRun()
}

func (w *Window) notify() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := w.app.Notify(ctx); err != nil {
			w.setStatus(describe(err))
			return
		}
		w.setStatus("Notification queued")
	}()
}

func (w *Window) setStatus(msg string) {
	if !w.live.Load() {
		return
	}
	fyne.Do(func() { w.status.SetText(msg) })
}

func describe(err error) string {
	var pe *geo.ParseError
	switch {
	case errors.As(err, &pe):
		return "Invalid coordinates: " + pe.Reason
	case errors.Is(err, notify.ErrNotReady):
		return "Discord is still connecting"
	case errors.Is(err, notify.ErrLoopUnavailable):
		return "Discord is busy, try again"
	default:
		return err.Error()
	}
}
