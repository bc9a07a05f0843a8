// Package pipeline wires the pre-processor, physics integrator,
// interpolator, segmenter and phosphor stages into the per-frame render
// operation, the way the worker's one render message is
// actually executed. It owns the physics state and the pre-
// interpolation direction-change map so the compositor never needs to
// reach back into earlier stages.
package pipeline

import (
	"crtscope/internal/compositor"
	"crtscope/internal/debug"
	"crtscope/internal/geom"
	"crtscope/internal/interp"
	"crtscope/internal/phosphor"
	"crtscope/internal/physics"
	"crtscope/internal/raster"
	"crtscope/internal/sample"
	"crtscope/internal/scopesettings"
	"crtscope/internal/segment"
)

// Pipeline runs the full chain for one render. It holds the beam
// physics state, which must persist across frames, and the canvas
// dimensions the renderer is bound to.
type Pipeline struct {
	pre    *sample.Preprocessor
	beam   *physics.Beam
	Logger *debug.Logger

	Canvas sample.Canvas
}

// New builds a Pipeline with a fresh beam at the origin.
func New(seed int64, canvas sample.Canvas, logger *debug.Logger) *Pipeline {
	return &Pipeline{
		pre:    sample.New(seed, logger),
		beam:   physics.New(logger),
		Logger: logger,
		Canvas: canvas,
	}
}

// Reset returns the beam to the origin.
func (p *Pipeline) Reset() {
	p.beam.Reset()
}

// Render runs the full pipeline for one pre-processor pass and returns
// the compositor frame ready to draw. For modes a/b/xy this is exactly
// one pass; AB mode uses RenderAB instead, since it composites two
// passes that share one beam.
func (p *Pipeline) Render(a, b []float32, sampleRate int, s scopesettings.Bundle) compositor.Frame {
	results := p.pre.Process(a, b, sampleRate, s, p.Canvas)
	if len(results) == 0 {
		return p.emptyFrame()
	}
	return p.runStages(results[0], sampleRate, s)
}

// RenderAB runs both the A-pass and B-pass pre-processor outputs
// through the SAME beam, sequentially, merging their results into one
// compositor frame.
func (p *Pipeline) RenderAB(a, b []float32, sampleRate int, s scopesettings.Bundle) compositor.Frame {
	results := p.pre.Process(a, b, sampleRate, s, p.Canvas)
	if len(results) == 0 {
		return p.emptyFrame()
	}

	merged := compositor.Frame{
		CanvasWidth:  p.Canvas.Width,
		CanvasHeight: p.Canvas.Height,
		SampleRate:   sampleRate,
	}
	for _, res := range results {
		f := p.runStages(res, sampleRate, s)
		merged.Segments = append(merged.Segments, f.Segments...)
		// Highlight indices are relative to this pass's Original; shift
		// them so they index the merged Original.
		offset := len(merged.Original)
		for _, h := range f.Highlights {
			h.Index += offset
			merged.Highlights = append(merged.Highlights, h)
		}
		merged.Original = append(merged.Original, f.Original...)
		merged.Interpolated = append(merged.Interpolated, f.Interpolated...)
	}
	return merged
}

// runStages pushes one pre-processor Result through
// physics → interpolation → segmentation → highlight detection.
func (p *Pipeline) runStages(res sample.Result, sampleRate int, s scopesettings.Bundle) compositor.Frame {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if len(res.Targets) < 2 {
		return compositor.Frame{
			CanvasWidth:  p.Canvas.Width,
			CanvasHeight: p.Canvas.Height,
			SampleRate:   sampleRate,
		}
	}

	clock := physics.NewSampleClock(sampleRate)
	traj := p.beam.StepAll(res.Targets, clock, s)

	interpolated := interp.Interpolate(traj, sampleRate, s.TimeSegmentMs, p.Logger)
	segments := segment.Split(interpolated, sampleRate, s.TimeSegmentMs)
	highlights := phosphor.DirectionChanges(res.Original)

	var debugInterp []geom.Point
	if s.DebugMode {
		for _, t := range interpolated {
			if t.IsInterpolated {
				debugInterp = append(debugInterp, t.Point)
			}
		}
	}

	if p.Logger != nil {
		p.Logger.LogCompositorf(debug.LogLevelTrace, "frame: %d targets, %d trajectory points, %d segments", len(res.Targets), len(interpolated), len(segments))
	}

	return compositor.Frame{
		Segments:     segments,
		Highlights:   highlights,
		Original:     res.Original,
		Interpolated: debugInterp,
		CanvasWidth:  p.Canvas.Width,
		CanvasHeight: p.Canvas.Height,
		SampleRate:   sampleRate,
	}
}

func (p *Pipeline) emptyFrame() compositor.Frame {
	return compositor.Frame{CanvasWidth: p.Canvas.Width, CanvasHeight: p.Canvas.Height}
}

// Draw composites a previously-rendered Frame onto r.
func Draw(r raster.Renderer, f compositor.Frame, s scopesettings.Bundle, fps float64, logger *debug.Logger) {
	compositor.Composite(r, f, s, fps, logger)
}
