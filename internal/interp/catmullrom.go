// Package interp implements the Catmull-Rom temporal interpolator: it
// inserts synthetic trajectory points between adjacent beam samples so
// the effective time step never exceeds timeSegment.
package interp

import (
	"math"

	"crtscope/internal/debug"
	"crtscope/internal/geom"
)

// Interpolate refines traj (one point per raw sample, sampleRate
// samples/second) to a temporal resolution of timeSegmentMs
// milliseconds. If Δt_seg ≥ Δt_sample it returns traj unchanged
// (pass-through).
func Interpolate(traj []geom.TrajectoryPoint, sampleRate int, timeSegmentMs float64, logger *debug.Logger) []geom.TrajectoryPoint {
	if len(traj) < 2 {
		return traj
	}
	dtSample := 1 / float64(sampleRate)
	dtSeg := timeSegmentMs / 1000

	if dtSeg >= dtSample {
		return traj
	}

	steps := int(math.Ceil(dtSample / dtSeg))
	if steps < 1 {
		steps = 1
	}

	if logger != nil {
		logger.LogInterpf(debug.LogLevelTrace, "interpolating %d points at %d steps/segment", len(traj), steps)
	}

	// Each pair of adjacent samples still spans one sample period of
	// wall-clock time; the emitted points divide it evenly.
	dtPoint := dtSample / float64(steps)

	out := make([]geom.TrajectoryPoint, 0, len(traj)*steps)
	n := len(traj)
	for i := 0; i < n-1; i++ {
		p0 := control(traj, i-1)
		p1 := control(traj, i)
		p2 := control(traj, i+1)
		p3 := control(traj, i+2)

		for step := 0; step < steps; step++ {
			t := float64(step) / float64(steps)
			pt := catmullRom(p0, p1, p2, p3, t)
			speed := p1.Speed + (p2.Speed-p1.Speed)*t
			out = append(out, geom.TrajectoryPoint{
				Point:          pt,
				Speed:          speed,
				Dt:             dtPoint,
				IsInterpolated: step != 0,
			})
		}
	}
	// The final original point closes the trajectory exactly at t=1 of
	// the last segment.
	last := traj[n-1]
	last.Dt = dtPoint
	out = append(out, last)
	return out
}

// control returns traj[i], replicating the nearest edge point for
// out-of-range indices.
func control(traj []geom.TrajectoryPoint, i int) geom.TrajectoryPoint {
	if i < 0 {
		return traj[0]
	}
	if i >= len(traj) {
		return traj[len(traj)-1]
	}
	return traj[i]
}

// catmullRom evaluates the uniform Catmull-Rom spline through p1..p2 at
// parameter t, using p0 and p3 as the outer control points.
func catmullRom(p0, p1, p2, p3 geom.TrajectoryPoint, t float64) geom.Point {
	t2 := t * t
	t3 := t2 * t

	x := 0.5 * ((2 * p1.X) +
		(-p0.X+p2.X)*t +
		(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
		(-p0.X+3*p1.X-3*p2.X+p3.X)*t3)

	y := 0.5 * ((2 * p1.Y) +
		(-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)

	return geom.Point{X: x, Y: y}
}
