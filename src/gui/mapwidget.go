package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"pack-manager/src/geo"
)

// mapWidget shows the rendered map and reports taps in surface pixels.
type mapWidget struct {
	widget.BaseWidget

	img      *canvas.Image
	pxW, pxH int
	onTap    func(geo.Point)
}

func newMapWidget(initial image.Image, onTap func(geo.Point)) *mapWidget {
	b := initial.Bounds()
	m := &mapWidget{
		img:   canvas.NewImageFromImage(initial),
		pxW:   b.Dx(),
		pxH:   b.Dy(),
		onTap: onTap,
	}
	m.img.FillMode = canvas.ImageFillStretch
	m.img.ScaleMode = canvas.ImageScalePixels
	m.img.SetMinSize(fyne.NewSize(float32(m.pxW), float32(m.pxH)))
	m.ExtendBaseWidget(m)
	return m
}

func (m *mapWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.img)
}

func (m *mapWidget) MinSize() fyne.Size {
	return m.img.MinSize()
}

// SetImage swaps the displayed frame. Must run on the fyne goroutine.
func (m *mapWidget) SetImage(img image.Image) {
	m.img.Image = img
	m.img.Refresh()
}

// Tapped converts the widget-relative position into surface pixels.
func (m *mapWidget) Tapped(ev *fyne.PointEvent) {
	if m.onTap == nil {
		return
	}
	size := m.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	m.onTap(geo.Point{
		X: float64(ev.Position.X) * float64(m.pxW) / float64(size.Width),
		Y: float64(ev.Position.Y) * float64(m.pxH) / float64(size.Height),
	})
}
