package interp

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"crtscope/internal/geom"
)

func straightTrajectory(n int) []geom.TrajectoryPoint {
	pts := make([]geom.TrajectoryPoint, n)
	for i := range pts {
		pts[i] = geom.TrajectoryPoint{Point: geom.Point{X: float64(i) * 10, Y: 0}, Speed: float64(i)}
	}
	return pts
}

func TestPassThroughWhenSegmentNotFiner(t *testing.T) {
	traj := straightTrajectory(8)
	// timeSegmentMs large enough that Δt_seg >= Δt_sample at 48000 Hz.
	out := Interpolate(traj, 48000, 1000, nil)
	if len(out) != len(traj) {
		t.Fatalf("expected pass-through, got %d points for %d input", len(out), len(traj))
	}
}

func TestEndpointExactness(t *testing.T) {
	traj := straightTrajectory(5)
	out := Interpolate(traj, 48000, 0.001, nil)

	// The first emitted point of each segment must equal the segment's
	// starting trajectory point exactly.
	idx := 0
	for i := 0; i < len(traj)-1; i++ {
		p := out[idx]
		if p.X != traj[i].X || p.Y != traj[i].Y {
			t.Errorf("segment %d does not start exactly at traj[%d]: got %+v, want %+v", i, i, p.Point, traj[i].Point)
		}
		for idx < len(out)-1 && out[idx+1].IsInterpolated {
			idx++
		}
		idx++
	}
	last := out[len(out)-1]
	if last.X != traj[len(traj)-1].X || last.Y != traj[len(traj)-1].Y {
		t.Errorf("trajectory does not end exactly at the final original point")
	}
}

func TestInterpolatedFlagOnlyOnSyntheticPoints(t *testing.T) {
	traj := straightTrajectory(3)
	out := Interpolate(traj, 48000, 0.001, nil)
	if out[0].IsInterpolated {
		t.Errorf("first emitted point must not be flagged interpolated")
	}
}

func TestCatmullRomMatchesStraightLine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(4, 20).Draw(t, "n")
		traj := straightTrajectory(n)
		out := Interpolate(traj, 48000, 0.0005, nil)

		for _, p := range out {
			if p.Y != 0 {
				t.Fatalf("a straight horizontal trajectory must interpolate to y=0, got %v", p.Y)
			}
		}
	})
}

func TestSpeedInterpolatedLinearly(t *testing.T) {
	traj := []geom.TrajectoryPoint{
		{Point: geom.Point{X: 0, Y: 0}, Speed: 0},
		{Point: geom.Point{X: 10, Y: 0}, Speed: 10},
	}
	out := Interpolate(traj, 4, 0.1, nil) // Δt_sample = 0.25s, Δt_seg = 0.1ms -> 2500 steps
	for i, p := range out {
		if p.Speed < -1e-9 || p.Speed > 10+1e-9 {
			t.Errorf("interpolated speed out of [0,10] range at %d: %v", i, p.Speed)
		}
	}
	if math.Abs(out[0].Speed-0) > 1e-9 {
		t.Errorf("first point should carry the starting speed, got %v", out[0].Speed)
	}
}
