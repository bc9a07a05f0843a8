// Package sample implements the pre-processor: noise
// injection, trigger detection, time-division windowing, and mapping of
// raw (A, B) sample buffers to device-pixel target positions.
package sample

import (
	"math/rand"

	"crtscope/internal/debug"
	"crtscope/internal/geom"
	"crtscope/internal/scopesettings"
)

// Canvas describes the drawing surface the pre-processor maps onto.
type Canvas struct {
	Width, Height float64
}

func (c Canvas) center() (float64, float64) {
	return c.Width / 2, c.Height / 2
}

// voltageCalibration is the fixed volts-to-pixels scale factor applied
// when mapping a sample's amplitude onto the canvas.
const voltageCalibration = 1.5

// Result is the output of one pre-processor pass: the physics-bound
// targets and the original (unsmoothed) points used later by the
// direction-change highlighter.
type Result struct {
	Targets  []geom.Point
	Original []geom.Point
}

// Preprocessor injects independent, reproducible noise into each call.
// Holding the *rand.Rand here (rather than reaching for the global
// math/rand functions) keeps noise generation single-owner rather than
// reaching into process-wide shared state.
type Preprocessor struct {
	rng    *rand.Rand
	Logger *debug.Logger
}

// New creates a Preprocessor seeded from seed. Pass time.Now().UnixNano()
// for non-deterministic noise, or a fixed seed for reproducible tests.
func New(seed int64, logger *debug.Logger) *Preprocessor {
	return &Preprocessor{rng: rand.New(rand.NewSource(seed)), Logger: logger}
}

// Process runs the full pre-processor pipeline and returns one Result per
// concurrent trace: one for modes A/B/XY, two (A-pass, B-pass) for mode AB.
func (p *Preprocessor) Process(a, b []float32, sampleRate int, s scopesettings.Bundle, canvas Canvas) []Result {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	a = a[:n]
	b = b[:n]

	na := p.injectNoise(a, s.SignalNoise)
	nb := p.injectNoise(b, s.SignalNoise)

	k := 0
	if s.Mode == scopesettings.ModeA || s.Mode == scopesettings.ModeB || s.Mode == scopesettings.ModeAB {
		triggerSource := na
		if s.TriggerChannel == scopesettings.TriggerB {
			triggerSource = nb
		}
		k = p.triggerIndex(triggerSource, s.TriggerLevel)
	}
	wa, wb := window(na, nb, k, sampleRate, s)

	switch s.Mode {
	case scopesettings.ModeXY:
		return []Result{mapXY(wa, wb, s, canvas)}
	case scopesettings.ModeB:
		return []Result{mapB(wa, wb, s, canvas)}
	case scopesettings.ModeAB:
		// Both channels share one trigger-aligned window; rendered as two
		// independent passes onto the same frame.
		return []Result{mapA(wa, wb, s, canvas), mapB(wa, wb, s, canvas)}
	default: // ModeA
		return []Result{mapA(wa, wb, s, canvas)}
	}
}

// injectNoise adds an independent uniform perturbation in
// [-signalNoise, +signalNoise] to each sample. Returns
// a fresh slice; the caller's buffer is never mutated.
func (p *Preprocessor) injectNoise(ch []float32, amount float64) []float32 {
	if amount <= 0 {
		out := make([]float32, len(ch))
		copy(out, ch)
		return out
	}
	out := make([]float32, len(ch))
	for i, v := range ch {
		n := (p.rng.Float64()*2 - 1) * amount
		out[i] = v + float32(n)
	}
	return out
}

// triggerIndex scans channel for the first rising-edge crossing of level:
// channel[k-1] < level <= channel[k]. Returns 0 when no crossing exists.
func (p *Preprocessor) triggerIndex(channel []float32, level float64) int {
	lvl := float32(level)
	for k := 1; k < len(channel); k++ {
		if channel[k-1] < lvl && lvl <= channel[k] {
			return k
		}
	}
	return 0
}

// window re-slices a (the primary channel for this pass) and b (the
// companion channel, aligned to the same start) starting at k, clamped to
// the configured time-division width and to settings.Decay.
func window(a, b []float32, k int, sampleRate int, s scopesettings.Bundle) ([]float32, []float32) {
	if k < 0 || k >= len(a) {
		k = 0
	}
	a = a[k:]
	if k < len(b) {
		b = b[k:]
	} else {
		b = b[:0]
	}

	winLen := int(float64(sampleRate) * s.TimeDiv * float64(scopesettings.HorizontalDivisions))
	if winLen > len(a) {
		winLen = len(a)
	}
	if winLen > s.Decay {
		winLen = s.Decay
	}
	if winLen < 0 {
		winLen = 0
	}
	if winLen > len(b) {
		b = padTo(b, winLen)
	} else {
		b = b[:winLen]
	}
	a = a[:winLen]
	return a, b
}

// padTo zero-extends b to length n, for when the companion channel in an
// AB pass comes up shorter than the primary channel's window.
func padTo(b []float32, n int) []float32 {
	if len(b) >= n {
		return b[:n]
	}
	out := make([]float32, n)
	copy(out, b)
	return out
}

func pixelScaleV(canvas Canvas) float64 {
	return canvas.Height / 10 * voltageCalibration
}

func mapXY(a, b []float32, s scopesettings.Bundle, canvas Canvas) Result {
	cx, cy := canvas.center()
	scale := pixelScaleV(canvas)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		x := cx + s.XPosition*scale + float64(a[i])*s.AmplDivA*scale
		y := cy - (s.PositionB+float64(b[i])*s.AmplDivB)*scale
		pts[i] = geom.Point{X: x, Y: y}
	}
	return Result{Targets: pts, Original: append([]geom.Point(nil), pts...)}
}

func mapA(a, b []float32, s scopesettings.Bundle, canvas Canvas) Result {
	cx, cy := canvas.center()
	v := pixelScaleV(canvas)
	n := len(a)
	width := canvas.Width
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		x := cx - width/2 + rampX(i, n, width)
		y := cy - (s.PositionA+float64(a[i])*s.AmplDivA)*v
		pts[i] = geom.Point{X: x, Y: y}
	}
	return Result{Targets: pts, Original: append([]geom.Point(nil), pts...)}
}

func mapB(a, b []float32, s scopesettings.Bundle, canvas Canvas) Result {
	cx, cy := canvas.center()
	v := pixelScaleV(canvas)
	n := len(b)
	width := canvas.Width
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		x := cx - width/2 + rampX(i, n, width)
		y := cy - (s.PositionB+float64(b[i])*s.AmplDivB)*v
		pts[i] = geom.Point{X: x, Y: y}
	}
	return Result{Targets: pts, Original: append([]geom.Point(nil), pts...)}
}

// rampX linearly ramps x across the window width, as required for modes
// A and B.
func rampX(i, n int, width float64) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1) * width
}
