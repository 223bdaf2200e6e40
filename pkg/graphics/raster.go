package graphics

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// circleSegments controls how finely circles are tessellated.
const circleSegments = 48

// Raster is a software Backend that rasterizes draw commands into an
// in-memory RGBA image. It exists for headless operation and tests; a GPU
// or windowing backend implements the same interface out of tree.
type Raster struct {
	img *image.RGBA
}

// NewRaster creates a software backend rendering into a width x height image.
func NewRaster(width, height int) *Raster {
	return &Raster{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the target image. The image is valid until the next Clear.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Clear fills the whole image with the given color.
func (r *Raster) Clear(c Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

func (r *Raster) DrawRect(rect Rect, paint Paint) {
	pts := []Offset{
		{X: rect.Left, Y: rect.Top},
		{X: rect.Right, Y: rect.Top},
		{X: rect.Right, Y: rect.Bottom},
		{X: rect.Left, Y: rect.Bottom},
	}
	r.DrawPolygon(pts, paint)
}

func (r *Raster) DrawCircle(center Offset, radius float64, paint Paint) {
	if radius <= 0 {
		return
	}
	pts := make([]Offset, circleSegments)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = Offset{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	r.DrawPolygon(pts, paint)
}

func (r *Raster) DrawLine(from, to Offset, paint Paint) {
	width := paint.StrokeWidth
	if width <= 0 {
		width = 1
	}
	color := paint.StrokeColor
	if color.Alpha() == 0 {
		color = paint.FillColor
	}
	r.fill(segmentQuad(from, to, width), color)
}

func (r *Raster) DrawPolygon(points []Offset, paint Paint) {
	if len(points) < 3 {
		return
	}
	if paint.HasFill() {
		r.fill(points, paint.FillColor)
	}
	if paint.HasStroke() {
		for i := range points {
			next := points[(i+1)%len(points)]
			r.fill(segmentQuad(points[i], next, paint.StrokeWidth), paint.StrokeColor)
		}
	}
}

// DrawText renders text centered on position using the built-in bitmap
// face. The face has a fixed glyph size, so TextStyle.Size only selects
// visibility (non-positive sizes draw nothing); scalable fonts are the
// job of a real rasterization backend.
func (r *Raster) DrawText(text string, position Offset, style TextStyle) {
	if text == "" || style.Size <= 0 || style.Color.Alpha() == 0 {
		return
	}
	face := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(style.Color.NRGBA()),
		Face: face,
	}
	width := drawer.MeasureString(text)
	metrics := face.Metrics()
	drawer.Dot = fixed.Point26_6{
		X: fixed.Int26_6(position.X*64) - width/2,
		Y: fixed.Int26_6(position.Y*64) + (metrics.Ascent-metrics.Descent)/2,
	}
	drawer.DrawString(text)
}

// fill rasterizes a closed polygon with the given color.
func (r *Raster) fill(points []Offset, c Color) {
	if len(points) < 3 || c.Alpha() == 0 {
		return
	}
	bounds := r.img.Bounds()
	ras := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ras.DrawOp = draw.Over
	ras.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		ras.LineTo(float32(p.X), float32(p.Y))
	}
	ras.ClosePath()
	ras.Draw(r.img, bounds, image.NewUniform(c.NRGBA()), image.Point{})
}

// segmentQuad returns the four corners of a width-thick quad covering the
// segment from a to b.
func segmentQuad(a, b Offset, width float64) []Offset {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		half := width / 2
		return []Offset{
			{X: a.X - half, Y: a.Y - half},
			{X: a.X + half, Y: a.Y - half},
			{X: a.X + half, Y: a.Y + half},
			{X: a.X - half, Y: a.Y + half},
		}
	}
	// Perpendicular unit vector scaled to half the stroke width.
	nx := -dy / length * width / 2
	ny := dx / length * width / 2
	return []Offset{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
}
