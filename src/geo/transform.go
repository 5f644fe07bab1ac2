package geo

import (
	"fmt"
	"math"
)

// World is a position in the game's own coordinate system.
type World struct {
	X float64
	Y float64
}

// Point is a pixel position on the map surface.
type Point struct {
	X float64
	Y float64
}

// Extents are the world-bounding constants of a map image. North and West are
// magnitudes on the negative side of their axis.
//
// With SwapAxes set, world X runs down the surface and world Y runs across it,
// which is how the in-game map reports coordinates.
type Extents struct {
	North    float64
	South    float64
	East     float64
	West     float64
	SwapAxes bool
}

// DefaultExtents are the constants of the stock map asset.
var DefaultExtents = Extents{North: 805, South: 101, East: 140, West: 960, SwapAxes: true}

// ConfigurationError reports unusable transform parameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid transform %s: %s", e.Field, e.Reason)
}

// Transform maps between world and surface coordinates. It is immutable and
// safe for concurrent use.
type Transform struct {
	ext    Extents
	scaleX float64
	scaleY float64
}

func NewTransform(ext Extents, width, height float64) (*Transform, error) {
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, &ConfigurationError{Field: "width", Reason: fmt.Sprintf("must be positive, got %v", width)}
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return nil, &ConfigurationError{Field: "height", Reason: fmt.Sprintf("must be positive, got %v", height)}
	}
	spanX := ext.West + ext.East
	spanY := ext.North + ext.South
	if spanX == 0 || math.IsNaN(spanX) || math.IsInf(spanX, 0) {
		return nil, &ConfigurationError{Field: "west+east", Reason: fmt.Sprintf("must be non-zero and finite, got %v", spanX)}
	}
	if spanY == 0 || math.IsNaN(spanY) || math.IsInf(spanY, 0) {
		return nil, &ConfigurationError{Field: "north+south", Reason: fmt.Sprintf("must be non-zero and finite, got %v", spanY)}
	}
	return &Transform{
		ext:    ext,
		scaleX: width / spanX,
		scaleY: height / spanY,
	}, nil
}

// Extents returns the constants the transform was built from.
func (t *Transform) Extents() Extents { return t.ext }

// ToSurface converts a world coordinate to surface pixels. No clamping.
func (t *Transform) ToSurface(w World) Point {
	h, v := w.X, w.Y
	if t.ext.SwapAxes {
		h, v = w.Y, w.X
	}
	return Point{
		X: (h + t.ext.West) * t.scaleX,
		Y: (v + t.ext.North) * t.scaleY,
	}
}

// ToWorld converts surface pixels back to a world coordinate. No clamping.
func (t *Transform) ToWorld(p Point) World {
	h := p.X/t.scaleX - t.ext.West
	v := p.Y/t.scaleY - t.ext.North
	if t.ext.SwapAxes {
		return World{X: v, Y: h}
	}
	return World{X: h, Y: v}
}
