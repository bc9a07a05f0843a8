// Package segment groups a trajectory into fixed wall-clock-duration
// segments, averaging speed across each for the phosphor
// stage to consume.
package segment

import "crtscope/internal/geom"

// Split accumulates each point's wall-clock time step (carried on the
// point by the physics integrator and refined by the interpolator) and
// closes a segment whenever the accumulated time reaches timeSegmentMs.
// The final, possibly-short, tail segment is always closed too. Points
// without a recorded time step fall back to the sample period.
func Split(traj []geom.TrajectoryPoint, sampleRate int, timeSegmentMs float64) []geom.Segment {
	if len(traj) == 0 {
		return nil
	}
	dtSegSeconds := timeSegmentMs / 1000
	dtSample := 1 / float64(sampleRate)

	var segments []geom.Segment
	segStart := 0
	var acc float64

	for i, p := range traj {
		dt := p.Dt
		if dt <= 0 {
			dt = dtSample
		}
		acc += dt

		if acc >= dtSegSeconds {
			segments = append(segments, closeSegment(traj, segStart, i))
			segStart = i + 1
			acc = 0
		}
	}
	if segStart < len(traj) {
		segments = append(segments, closeSegment(traj, segStart, len(traj)-1))
	}
	return segments
}

func closeSegment(traj []geom.TrajectoryPoint, start, end int) geom.Segment {
	pts := traj[start : end+1]
	var sum float64
	for _, p := range pts {
		sum += p.Speed
	}
	mean := 0.0
	if len(pts) > 0 {
		mean = sum / float64(len(pts))
	}
	return geom.Segment{Points: pts, MeanSpeed: mean}
}
