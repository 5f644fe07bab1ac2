package mapview

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"pack-manager/src/geo"
)

const (
	dotRadius   = 2
	ringRadius  = 15
	ringWidth   = 3
	lineWidth   = 2
	arrowLength = 12
	arrowWidth  = 10
	segments    = 48
)

// drawDot paints a filled dot inside an outlined ring.
func drawDot(dst *image.RGBA, at geo.Point, c color.RGBA) {
	if !finite(at) {
		return
	}
	z := newRasterizer(dst)
	circlePath(z, at, dotRadius, false)
	fill(z, dst, c)

	z = newRasterizer(dst)
	circlePath(z, at, ringRadius+ringWidth/2.0, false)
	circlePath(z, at, ringRadius-ringWidth/2.0, true)
	fill(z, dst, c)
}

// drawArrow paints a line from -> to with an arrowhead at to.
func drawArrow(dst *image.RGBA, from, to geo.Point, c color.RGBA) {
	if !finite(from) || !finite(to) {
		return
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	shaftEnd := geo.Point{X: to.X - ux*arrowLength, Y: to.Y - uy*arrowLength}
	if length < arrowLength {
		shaftEnd = from
	}

	z := newRasterizer(dst)
	hw := lineWidth / 2.0
	z.MoveTo(f32(from.X+nx*hw), f32(from.Y+ny*hw))
	z.LineTo(f32(shaftEnd.X+nx*hw), f32(shaftEnd.Y+ny*hw))
	z.LineTo(f32(shaftEnd.X-nx*hw), f32(shaftEnd.Y-ny*hw))
	z.LineTo(f32(from.X-nx*hw), f32(from.Y-ny*hw))
	z.ClosePath()

	ah := arrowWidth / 2.0
	z.MoveTo(f32(to.X), f32(to.Y))
	z.LineTo(f32(shaftEnd.X+nx*ah), f32(shaftEnd.Y+ny*ah))
	z.LineTo(f32(shaftEnd.X-nx*ah), f32(shaftEnd.Y-ny*ah))
	z.ClosePath()
	fill(z, dst, c)
}

func newRasterizer(dst *image.RGBA) *vector.Rasterizer {
	b := dst.Bounds()
	return vector.NewRasterizer(b.Dx(), b.Dy())
}

// circlePath adds a closed polygonal circle. Reversed circles cut holes.
func circlePath(z *vector.Rasterizer, center geo.Point, r float64, reverse bool) {
	for i := 0; i <= segments; i++ {
		step := i
		if reverse {
			step = segments - i
		}
		a := 2 * math.Pi * float64(step) / segments
		x := f32(center.X + r*math.Cos(a))
		y := f32(center.Y + r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

func fill(z *vector.Rasterizer, dst *image.RGBA, c color.RGBA) {
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func finite(p geo.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func f32(v float64) float32 { return float32(v) }
