package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Software is the CPU rasterizer backend: a single RGBA framebuffer
// painted through golang.org/x/image's vector/draw packages for
// anti-aliased path fills.
type Software struct {
	img    *image.RGBA
	w, h   int
	dpr    float64
	lastFPS float64
}

// NewSoftware constructs an uninitialized Software renderer; call Init
// before issuing draw calls.
func NewSoftware() *Software {
	return &Software{}
}

func (s *Software) Init(_ interface{}, dpr float64, width, height int) error {
	if dpr <= 0 {
		dpr = 1
	}
	s.dpr = dpr
	s.w = int(float64(width) * dpr)
	s.h = int(float64(height) * dpr)
	if s.w < 1 {
		s.w = 1
	}
	if s.h < 1 {
		s.h = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	s.Clear()
	return nil
}

// Image returns the current framebuffer, e.g. for presentation via a
// canvas.Image or an SDL texture upload.
func (s *Software) Image() *image.RGBA {
	return s.img
}

func (s *Software) ClearWithPersistence(alpha float64) {
	if s.img == nil {
		return
	}
	alpha = clamp01(alpha)
	bg := BackgroundColor
	px := s.img.Pix
	for i := 0; i+3 < len(px); i += 4 {
		px[i+0] = lerpByte(px[i+0], bg.R, alpha)
		px[i+1] = lerpByte(px[i+1], bg.G, alpha)
		px[i+2] = lerpByte(px[i+2], bg.B, alpha)
		px[i+3] = 255
	}
}

func (s *Software) Clear() {
	if s.img == nil {
		return
	}
	bg := BackgroundColor
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{C: toRGBA(bg, 255)}, image.Point{}, draw.Src)
}

// StrokeSegment approximates a round-capped, round-joined polyline by
// rasterizing a filled quad for each edge plus a filled disc at every
// joint, all into one alpha mask composited in a single pass.
func (s *Software) StrokeSegment(points []Point, color Color, opacity, width float64) {
	if s.img == nil || len(points) == 0 || opacity <= 0 {
		return
	}
	mask := image.NewAlpha(s.img.Bounds())
	r := vector.NewRasterizer(s.w, s.h)
	half := width * s.dpr / 2
	if half < 0.5 {
		half = 0.5
	}

	for i := 0; i < len(points)-1; i++ {
		addQuad(r, s.scale(points[i]), s.scale(points[i+1]), half)
	}
	for _, p := range points {
		addCircle(r, s.scale(p), half)
	}
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	a := uint8(clamp01(opacity) * 255)
	src := &image.Uniform{C: toRGBA(color, a)}
	draw.DrawMask(s.img, s.img.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
}

func (s *Software) FillDot(x, y, r float64, color Color, opacity float64) {
	if s.img == nil || opacity <= 0 || r <= 0 {
		return
	}
	mask := image.NewAlpha(s.img.Bounds())
	rast := vector.NewRasterizer(s.w, s.h)
	addCircle(rast, s.scale(Point{X: x, Y: y}), r*s.dpr)
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	a := uint8(clamp01(opacity) * 255)
	src := &image.Uniform{C: toRGBA(color, a)}
	draw.DrawMask(s.img, s.img.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawFPS overlays a short horizontal bar whose length encodes fps
// against a 120fps scale; a lightweight stand-in for a text readout
// that avoids pulling in a font-rasterization dependency for one
// debug-only number.
func (s *Software) DrawFPS(fps float64) {
	s.lastFPS = fps
	if s.img == nil {
		return
	}
	frac := clamp01(fps / 120)
	barW := int(frac * 80 * s.dpr)
	rect := image.Rect(4, 4, 4+barW, 4+int(4*s.dpr))
	draw.Draw(s.img, rect, &image.Uniform{C: toRGBA(Color{R: 255, G: 255, B: 255}, 200)}, image.Point{}, draw.Over)
}

func (s *Software) Present() {}

func (s *Software) Close() error {
	s.img = nil
	return nil
}

func (s *Software) scale(p Point) Point {
	return Point{X: p.X * s.dpr, Y: p.Y * s.dpr}
}

func addQuad(r *vector.Rasterizer, a, b Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	r.MoveTo(f32(a.X+nx), f32(a.Y+ny))
	r.LineTo(f32(b.X+nx), f32(b.Y+ny))
	r.LineTo(f32(b.X-nx), f32(b.Y-ny))
	r.LineTo(f32(a.X-nx), f32(a.Y-ny))
	r.ClosePath()
}

func addCircle(r *vector.Rasterizer, c Point, radius float64) {
	const segments = 16
	r.MoveTo(f32(c.X+radius), f32(c.Y))
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		r.LineTo(f32(c.X+radius*math.Cos(theta)), f32(c.Y+radius*math.Sin(theta)))
	}
	r.ClosePath()
}

func f32(v float64) float32 { return float32(v) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpByte(from, to uint8, t float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*t)
}

func toRGBA(c Color, a uint8) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: a}
}
