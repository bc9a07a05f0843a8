// Package phosphor implements the excitation curve that maps a trace
// segment's speed to stroke opacity, and the direction-
// change highlighter that marks sharp turns in the original, pre-
// physics point sequence.
package phosphor

import "math"

const (
	referenceVelocity   = 500.0
	beamSpotSize        = 1.5
	saturationKnee      = 0.6
	saturationStrength  = 0.4
	saturationK         = 10.0
	highlightVisibility = 0.05
	dotRadiusFraction   = 0.001875
)

// Excitation maps speed (pixels/second) to a [0, 1] stroke brightness,
// given the frame's velocityDimming and basePower settings and the
// Δt over which the energy was deposited.
//
// Δt is accepted for interface symmetry with the idea that excitation
// is an energy deposition over an interval; the curve itself depends
// only on speed/dimming/power.
func Excitation(speed, velocityDimming, basePower, dt float64) float64 {
	_ = dt

	energyFactor := 1.0
	if speed >= beamSpotSize {
		energyFactor = clamp(referenceVelocity/speed, 0.02, 1.0)
	}

	depositedEnergy := basePower * (velocityDimming*energyFactor + (1 - velocityDimming))

	var brightness float64
	if depositedEnergy < saturationKnee {
		brightness = depositedEnergy
	} else {
		excess := depositedEnergy - saturationKnee
		compressed := math.Log(1+excess*saturationK) / math.Log(1+saturationK)
		brightness = saturationKnee + compressed*saturationStrength
	}

	return clamp(brightness, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DotRadius returns the direction-highlight dot radius for a canvas of
// the given dimensions.
func DotRadius(canvasWidth, canvasHeight float64) float64 {
	return minf(canvasWidth, canvasHeight) * dotRadiusFraction
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
