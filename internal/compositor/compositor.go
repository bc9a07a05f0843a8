// Package compositor presents a frame's phosphor trace onto a Renderer
// in a fixed sequence: persistence fade, trace strokes, direction-
// change highlights, and optional debug overlays.
package compositor

import (
	"crtscope/internal/debug"
	"crtscope/internal/geom"
	"crtscope/internal/phosphor"
	"crtscope/internal/raster"
	"crtscope/internal/scopesettings"
)

const strokeWidthFraction = 0.00375

// Frame is everything the compositor needs to draw one frame.
type Frame struct {
	Segments   []geom.Segment
	Highlights []phosphor.Highlight
	Original   []geom.Point

	// Interpolated carries every synthetic point emitted by the
	// interpolator, for the debug red-dot overlay.
	Interpolated []geom.Point

	CanvasWidth, CanvasHeight float64
	SampleRate                int
}

// Composite draws one Frame through r according to s. fps is only consulted when s.DebugMode is set.
func Composite(r raster.Renderer, f Frame, s scopesettings.Bundle, fps float64, logger *debug.Logger) {
	r.ClearWithPersistence(1 - s.Persistence)

	strokeTrace(r, f, s)
	strokeHighlights(r, f, s)

	if s.DebugMode {
		strokeDebug(r, f, s)
		r.DrawFPS(fps)
	}

	r.Present()

	if logger != nil {
		logger.LogCompositorf(debug.LogLevelTrace, "composited %d segments, %d highlights", len(f.Segments), len(f.Highlights))
	}
}

func strokeTrace(r raster.Renderer, f Frame, s scopesettings.Bundle) {
	width := minf(f.CanvasWidth, f.CanvasHeight) * strokeWidthFraction
	dtSeg := s.TimeSegmentMs / 1000

	for _, seg := range f.Segments {
		if len(seg.Points) < 2 {
			continue
		}
		opacity := phosphor.Excitation(seg.MeanSpeed, s.VelocityDimming, s.BeamPower, dtSeg)
		if opacity <= 0 {
			continue
		}
		pts := make([]raster.Point, len(seg.Points))
		for i, p := range seg.Points {
			pts[i] = raster.Point{X: p.X, Y: p.Y}
		}
		r.StrokeSegment(pts, raster.TraceColor, opacity, width)
	}
}

func strokeHighlights(r raster.Renderer, f Frame, s scopesettings.Bundle) {
	radius := phosphor.DotRadius(f.CanvasWidth, f.CanvasHeight)
	for _, h := range f.Highlights {
		if h.Index < 0 || h.Index >= len(f.Original) {
			continue
		}
		p := f.Original[h.Index]
		r.FillDot(p.X, p.Y, radius, raster.HighlightColor, s.BeamPower*h.Brightness)
	}
}

func strokeDebug(r raster.Renderer, f Frame, s scopesettings.Bundle) {
	radius := phosphor.DotRadius(f.CanvasWidth, f.CanvasHeight) * 0.5

	for _, p := range f.Interpolated {
		r.FillDot(p.X, p.Y, radius, raster.DebugInterpolatedColor, s.SampleDotOpacity)
	}

	brightnessByIndex := make(map[int]float64, len(f.Highlights))
	for _, h := range f.Highlights {
		brightnessByIndex[h.Index] = h.Brightness
	}
	for i, p := range f.Original {
		scale := 1.0
		if b, ok := brightnessByIndex[i]; ok {
			scale = 1 + b*s.DotSizeVariation
		}
		r.FillDot(p.X, p.Y, radius*scale, raster.DebugOriginalColor, s.DotOpacity)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
