package phosphor

import (
	"math"

	"crtscope/internal/geom"
)

// Highlight is a recorded direction change: the index into the original
// point sequence and its brightness.
type Highlight struct {
	Index      int
	Brightness float64
}

// DirectionChanges scans the ORIGINAL (pre-physics) point sequence for
// sharp turns and records one Highlight per interior point whose
// brightness exceeds the visibility threshold.
//
// This runs on Original, never on the smoothed/interpolated trajectory,
// so its output is invariant to timeSegment and interpolation settings.
func DirectionChanges(original []geom.Point) []Highlight {
	if len(original) < 3 {
		return nil
	}
	var out []Highlight
	for i := 1; i < len(original)-1; i++ {
		vIn := original[i].Sub(original[i-1])
		vOut := original[i+1].Sub(original[i])

		magIn := math.Hypot(vIn.X, vIn.Y)
		magOut := math.Hypot(vOut.X, vOut.Y)
		if magIn == 0 || magOut == 0 {
			continue
		}

		cos := (vIn.X*vOut.X + vIn.Y*vOut.Y) / (magIn * magOut)
		cos = clamp(cos, -1, 1)
		angleDeg := math.Acos(cos) * 180 / math.Pi
		brightness := math.Pow(angleDeg/180, 1.5)

		if brightness > highlightVisibility {
			out = append(out, Highlight{Index: i, Brightness: brightness})
		}
	}
	return out
}
