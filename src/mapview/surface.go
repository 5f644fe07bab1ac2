package mapview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"sort"
	"sync"

	xdraw "golang.org/x/image/draw"

	"pack-manager/src/geo"
	"pack-manager/src/marker"
)

// DefaultScale shrinks the map asset to fit the window.
const DefaultScale = 0.8

var (
	positionColor    = color.RGBA{R: 0x1e, G: 0x5a, B: 0xff, A: 0xff}
	destinationColor = color.RGBA{R: 0xe0, G: 0x1b, B: 0x1b, A: 0xff}
	connectorColor   = color.RGBA{A: 0xff}
)

type shape struct {
	kind marker.Kind
	at   geo.Point
}

type line struct {
	from geo.Point
	to   geo.Point
}

// Surface is the annotated map. It applies marker instructions and renders
// the result; it never decides what to draw.
type Surface struct {
	mu        sync.Mutex
	base      *image.RGBA
	markers   map[marker.Handle]shape
	connector *line
}

// Load decodes the map image at path and scales it by scale.
func Load(path string, scale float64) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode map image %s: %w", path, err)
	}
	return New(img, scale)
}

// New builds a surface from an already decoded image.
func New(img image.Image, scale float64) (*Surface, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("map image too small: %dx%d at scale %v", b.Dx(), b.Dy(), scale)
	}

	base := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(base, base.Bounds(), img, b, xdraw.Src, nil)
	return &Surface{base: base, markers: make(map[marker.Handle]shape)}, nil
}

// Size returns the pixel dimensions of the surface.
func (s *Surface) Size() (int, int) {
	b := s.base.Bounds()
	return b.Dx(), b.Dy()
}

// Apply implements marker.Sink.
func (s *Surface) Apply(batch []marker.Instruction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range batch {
		switch in.Op {
		case marker.AddMarker:
			s.markers[in.Handle] = shape{kind: in.Kind, at: in.At}
		case marker.RemoveMarker:
			delete(s.markers, in.Handle)
		case marker.SetConnector:
			s.connector = &line{from: in.From, to: in.To}
		case marker.RemoveConnector:
			s.connector = nil
		}
	}
}

// Handles lists the markers currently drawn, in ascending order.
func (s *Surface) Handles() []marker.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]marker.Handle, 0, len(s.markers))
	for h := range s.markers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasConnector reports whether a connector is drawn.
func (s *Surface) HasConnector() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connector != nil
}

// Render draws the base map with the connector below the markers.
func (s *Surface) Render() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := image.NewRGBA(s.base.Bounds())
	copy(dst.Pix, s.base.Pix)

	if s.connector != nil {
		drawArrow(dst, s.connector.from, s.connector.to, connectorColor)
	}

	handles := make([]marker.Handle, 0, len(s.markers))
	for h := range s.markers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		m := s.markers[h]
		c := positionColor
		if m.kind == marker.Destination {
			c = destinationColor
		}
		drawDot(dst, m.at, c)
	}
	return dst
}

// Snapshot returns the rendered map as PNG bytes.
func (s *Surface) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Render()); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
