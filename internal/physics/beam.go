// Package physics implements the electromagnetic beam deflection
// integrator: a discrete force/velocity/position model that
// turns pre-processor target points into a smoothed beam trajectory.
package physics

import (
	"math"

	"crtscope/internal/debug"
	"crtscope/internal/geom"
	"crtscope/internal/scopesettings"
)

// Beam holds the per-worker physics state. It must not be shared across
// goroutines; the worker owns exactly one Beam and steps it serially.
type Beam struct {
	bx, by   float64
	vx, vy   float64
	sbx, sby float64

	Logger *debug.Logger
}

// New creates a Beam at rest at the origin.
func New(logger *debug.Logger) *Beam {
	return &Beam{Logger: logger}
}

// Reset returns the beam to the origin. Called on an explicit worker
// reset and after a detected divergence; never called between ordinary
// frames, since the beam state must stay continuous across frames. A
// change of display mode does not reset the beam.
func (b *Beam) Reset() {
	b.bx, b.by = 0, 0
	b.vx, b.vy = 0, 0
	b.sbx, b.sby = 0, 0
}

// smoothedMix is the exponential blend weight applied between the raw
// and previously smoothed beam positions each step.
const smoothedMix = 0.6

// SampleClock derives the fixed per-sample time step from a sample
// rate, the same step-driven shape as a cycle-stepped master clock
// narrowed down to this pipeline's single (sample-rate) domain.
type SampleClock struct {
	dt float64
}

// NewSampleClock builds a SampleClock for sampleRate samples/second.
func NewSampleClock(sampleRate int) SampleClock {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return SampleClock{dt: 1 / float64(sampleRate)}
}

// Dt returns Δt_sample.
func (c SampleClock) Dt() float64 { return c.dt }

// Step applies one discrete integration step toward target and returns
// the resulting smoothed beam position and its instantaneous speed.
func (b *Beam) Step(target geom.Point, clock SampleClock, s scopesettings.Bundle) geom.TrajectoryPoint {
	dt := clock.Dt()

	fx := (target.X - b.bx) * s.CoilStrength
	fy := (target.Y - b.by) * s.CoilStrength

	inertia := s.BeamInertia
	if inertia < 0.01 {
		inertia = 0.01
	}
	ax := fx / inertia
	ay := fy / inertia

	b.vx += ax * dt
	b.vy += ay * dt

	damping := s.FieldDamping
	if damping <= 0 {
		damping = 1e-6
	}
	if damping >= 1 {
		damping = 0.999
	}
	b.vx *= damping
	b.vy *= damping

	b.bx += b.vx * dt
	b.by += b.vy * dt

	b.sbx = smoothedMix*b.bx + (1-smoothedMix)*b.sbx
	b.sby = smoothedMix*b.by + (1-smoothedMix)*b.sby

	speed := math.Hypot(b.vx, b.vy)

	if b.diverged() {
		if b.Logger != nil {
			b.Logger.LogPhysicsf(debug.LogLevelError, "beam diverged (nan/inf), resetting to origin")
		}
		b.Reset()
		return geom.TrajectoryPoint{Point: geom.Point{}, Speed: 0, Dt: dt}
	}

	return geom.TrajectoryPoint{Point: geom.Point{X: b.sbx, Y: b.sby}, Speed: speed, Dt: dt}
}

func (b *Beam) diverged() bool {
	vals := [...]float64{b.bx, b.by, b.vx, b.vy, b.sbx, b.sby}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// StepAll runs Step over every target in order, producing one
// trajectory point per target. This is the normal per-frame entry
// point used by the pipeline orchestrator.
func (b *Beam) StepAll(targets []geom.Point, clock SampleClock, s scopesettings.Bundle) []geom.TrajectoryPoint {
	out := make([]geom.TrajectoryPoint, len(targets))
	for i, t := range targets {
		out[i] = b.Step(t, clock, s)
	}
	return out
}
