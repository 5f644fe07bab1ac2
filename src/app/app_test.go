package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pack-manager/src/geo"
	"pack-manager/src/mapview"
	"pack-manager/src/marker"
	"pack-manager/src/notify"
	"pack-manager/src/worker"
)

type fakeClient struct {
	loop   *worker.Loop
	mu     sync.Mutex
	sent   []notify.Message
	sentCh chan struct{}
}

func (f *fakeClient) FindGroup(name string) (notify.Group, bool) {
	return notify.Group{ID: "g", Name: name}, name == "Pack"
}

func (f *fakeClient) FindChannel(g notify.Group, name string) (notify.Channel, bool) {
	return notify.Channel{ID: "c", Name: name}, name == "dino-updates"
}

func (f *fakeClient) Send(ctx context.Context, ch notify.Channel, msg notify.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	f.sentCh <- struct{}{}
	return nil
}

func (f *fakeClient) Schedule(fn func(ctx context.Context)) bool { return f.loop.Submit(fn) }

type fixture struct {
	app    *App
	client *fakeClient
	ready  *notify.Readiness
	clip   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1200, 1200))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	surface, err := mapview.New(img, mapview.DefaultScale)
	require.NoError(t, err)

	log := zaptest.NewLogger(t).Sugar()
	loop := worker.New(4, log)
	t.Cleanup(loop.Close)

	fx := &fixture{
		client: &fakeClient{loop: loop, sentCh: make(chan struct{}, 4)},
		ready:  &notify.Readiness{},
	}
	fx.app, err = New(Options{
		Surface:       surface,
		Extents:       geo.DefaultExtents,
		Client:        fx.client,
		Readiness:     fx.ready,
		GuildName:     "Pack",
		ChannelName:   "dino-updates",
		Mention:       "@here",
		ReadClipboard: func() (string, error) { return fx.clip, nil },
		Sleep:         func(time.Duration) {},
		Log:           log,
	})
	require.NoError(t, err)
	return fx
}

func TestSetPositionTextDrawsMarker(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.app.SetPositionText("(100, 200)"))
	assert.Equal(t, "100,200", fx.app.Fields().Position)
	assert.Len(t, fx.app.Surface().Handles(), 1)

	var pe *geo.ParseError
	err := fx.app.SetPositionText("north of the river")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "100,200", fx.app.Fields().Position, "failed parse leaves the position alone")
}

func TestQuickSetPositionReadsClipboard(t *testing.T) {
	fx := newFixture(t)
	fx.clip = "-50.5, 75"

	require.NoError(t, fx.app.QuickSetPosition())
	assert.Equal(t, "-50,75", fx.app.Fields().Position)
}

func TestArmedSelectionSetsDestination(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.app.SetPositionText("0,0"))

	assert.False(t, fx.app.SelectPoint(geo.Point{X: 10, Y: 10}), "unarmed selection is ignored")

	fx.app.ArmDestination()
	assert.True(t, fx.app.Armed())
	assert.True(t, fx.app.SelectPoint(geo.Point{X: 10, Y: 10}))
	assert.False(t, fx.app.Armed())
	assert.NotEmpty(t, fx.app.Fields().Destination)
	assert.True(t, fx.app.Surface().HasConnector())
	assert.Len(t, fx.app.Surface().Handles(), 2)

	fx.app.DeleteDestination()
	assert.Empty(t, fx.app.Fields().Destination)
	assert.False(t, fx.app.Surface().HasConnector())
	assert.Len(t, fx.app.Surface().Handles(), 1)
}

func TestOnChangeSeesSelections(t *testing.T) {
	fx := newFixture(t)
	var last marker.Fields
	fx.app.OnChange(func(f marker.Fields) { last = f })

	fx.app.SetServer("Island 1")
	fx.app.SetEntity("Rex")
	fx.app.SetActivity("Taming")
	assert.Equal(t, marker.Fields{Server: "Island 1", Entity: "Rex", Activity: "Taming"}, last)
}

func TestNotifyBeforeReady(t *testing.T) {
	fx := newFixture(t)
	err := fx.app.Notify(context.Background())
	assert.ErrorIs(t, err, notify.ErrNotReady)
	assert.Equal(t, notify.Stats{}, fx.app.Stats())
}

func TestNotifySendsSnapshot(t *testing.T) {
	fx := newFixture(t)
	fx.ready.MarkReady()
	require.NoError(t, fx.app.SetPositionText("-400,-500"))
	fx.app.SetEntity("Rex")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fx.app.Notify(ctx))

	select {
	case <-fx.client.sentCh:
	case <-ctx.Done():
		t.Fatal("notification was not sent")
	}

	fx.client.mu.Lock()
	defer fx.client.mu.Unlock()
	require.Len(t, fx.client.sent, 1)
	msg := fx.client.sent[0]
	assert.Contains(t, msg.Header, "-400,-500")
	assert.Contains(t, msg.Header, "Rex")
	assert.Contains(t, msg.Header, "@here")

	img, err := png.Decode(bytes.NewReader(msg.Attachment))
	require.NoError(t, err)
	w, h := fx.app.Surface().Size()
	assert.Equal(t, image.Rect(0, 0, w, h), img.Bounds())
	at := fx.pixelOf(geo.World{X: -400, Y: -500})
	require.True(t, image.Pt(int(at.X), int(at.Y)).In(img.Bounds()))
	assert.NotEqual(t, color.RGBAModel.Convert(color.White), color.RGBAModel.Convert(img.At(int(at.X), int(at.Y))))
}

func TestHotkeyChain(t *testing.T) {
	fx := newFixture(t)
	fx.ready.MarkReady()
	fx.clip = "300,400"

	fx.app.Hotkey().OnTrigger(context.Background())
	assert.Equal(t, "300,400", fx.app.Fields().Position)

	select {
	case <-fx.client.sentCh:
	case <-time.After(2 * time.Second):
		t.Fatal("hotkey did not notify")
	}
}

func TestCloseReleasesMarkers(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.app.SetPositionText("1,2"))
	fx.app.ArmDestination()
	fx.app.SelectPoint(geo.Point{X: 5, Y: 5})

	fx.app.Close()
	assert.Empty(t, fx.app.Surface().Handles())
	assert.False(t, fx.app.Surface().HasConnector())
}

func TestNewRequiresSurface(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, notify.ErrNotReady))
}

func (fx *fixture) pixelOf(at geo.World) geo.Point {
	w, h := fx.app.Surface().Size()
	tr, _ := geo.NewTransform(geo.DefaultExtents, float64(w), float64(h))
	return tr.ToSurface(at)
}
