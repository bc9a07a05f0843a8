// Package scopesettings holds the per-frame settings bundle that drives the
// rendering pipeline: display mode, trigger, gain/position, physics knobs,
// noise, persistence and debug flags.
package scopesettings

// Mode selects which channels drive the trace and how.
type Mode string

const (
	ModeA  Mode = "a"
	ModeB  Mode = "b"
	ModeAB Mode = "ab"
	ModeXY Mode = "xy"
)

// TriggerChannel selects which channel the trigger scans.
type TriggerChannel string

const (
	TriggerA TriggerChannel = "a"
	TriggerB TriggerChannel = "b"
)

// Bundle is the per-frame settings record: display mode, trigger,
// gain/position, physics knobs, noise, persistence and debug flags.
// All fields are value types; a Bundle is copied per frame, never
// shared across the host/worker boundary.
type Bundle struct {
	Mode Mode

	TimeDiv         float64 // seconds/division; [50e-9, 0.5]
	TriggerLevel    float64 // [-1, 1]
	TriggerChannel  TriggerChannel
	AmplDivA        float64
	AmplDivB        float64
	PositionA       float64 // [-1, 1]
	PositionB       float64 // [-1, 1]
	XPosition       float64 // [-1, 1]

	CoilStrength float64
	BeamInertia  float64
	FieldDamping float64

	SignalNoise float64 // [0, 0.2]
	Persistence float64 // [0, 0.95]

	VelocityDimming float64 // [0, 1]
	BeamPower       float64 // [0, 2]

	TimeSegmentMs float64 // [0.001, 0.050]
	Decay         int     // [512, 16384]

	DebugMode         bool
	DotOpacity        float64
	SampleDotOpacity  float64
	DotSizeVariation  float64
}

// HorizontalDivisions is the fixed number of horizontal divisions used by
// the windowing step (§4.1 step 3).
const HorizontalDivisions = 10

// Default returns a Bundle with sane defaults, pre-clamped.
func Default() Bundle {
	b := Bundle{
		Mode:             ModeXY,
		TimeDiv:          0.001,
		TriggerLevel:     0,
		TriggerChannel:   TriggerA,
		AmplDivA:         1,
		AmplDivB:         1,
		PositionA:        0,
		PositionB:        0,
		XPosition:        0,
		CoilStrength:     0.32,
		BeamInertia:      0.06,
		FieldDamping:     0.44,
		SignalNoise:      0,
		Persistence:      0.85,
		VelocityDimming:  1,
		BeamPower:        1,
		TimeSegmentMs:    0.01,
		Decay:            16384,
		DebugMode:        false,
		DotOpacity:       1,
		SampleDotOpacity: 0.6,
		DotSizeVariation: 1,
	}
	b.Clamp()
	return b
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp silently clamps every field to its valid range. Invalid
// settings are never surfaced as errors.
func (b *Bundle) Clamp() {
	switch b.Mode {
	case ModeA, ModeB, ModeAB, ModeXY:
	default:
		b.Mode = ModeXY
	}
	switch b.TriggerChannel {
	case TriggerA, TriggerB:
	default:
		b.TriggerChannel = TriggerA
	}

	b.TimeDiv = clamp(b.TimeDiv, 50e-9, 0.5)
	b.TriggerLevel = clamp(b.TriggerLevel, -1, 1)
	b.PositionA = clamp(b.PositionA, -1, 1)
	b.PositionB = clamp(b.PositionB, -1, 1)
	b.XPosition = clamp(b.XPosition, -1, 1)

	if b.BeamInertia < 0.01 {
		b.BeamInertia = 0.01
	}
	if b.FieldDamping <= 0 {
		b.FieldDamping = 1e-6
	}
	if b.FieldDamping >= 1 {
		b.FieldDamping = 0.999
	}

	b.SignalNoise = clamp(b.SignalNoise, 0, 0.2)
	b.Persistence = clamp(b.Persistence, 0, 0.95)
	b.VelocityDimming = clamp(b.VelocityDimming, 0, 1)
	b.BeamPower = clamp(b.BeamPower, 0, 2)
	b.TimeSegmentMs = clamp(b.TimeSegmentMs, 0.001, 0.050)
	b.Decay = clampInt(b.Decay, 512, 16384)

	b.DotOpacity = clamp(b.DotOpacity, 0, 1)
	b.SampleDotOpacity = clamp(b.SampleDotOpacity, 0, 1)
	b.DotSizeVariation = clamp(b.DotSizeVariation, 0, 4)
}
