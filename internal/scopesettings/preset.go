package scopesettings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// presetDoc mirrors Bundle but with yaml tags; kept separate from Bundle so
// the wire/storage shape can drift independently of the in-memory one.
type presetDoc struct {
	Mode string `yaml:"mode"`

	TimeDiv        float64 `yaml:"time_div"`
	TriggerLevel   float64 `yaml:"trigger_level"`
	TriggerChannel string  `yaml:"trigger_channel"`
	AmplDivA       float64 `yaml:"ampl_div_a"`
	AmplDivB       float64 `yaml:"ampl_div_b"`
	PositionA      float64 `yaml:"position_a"`
	PositionB      float64 `yaml:"position_b"`
	XPosition      float64 `yaml:"x_position"`

	CoilStrength float64 `yaml:"coil_strength"`
	BeamInertia  float64 `yaml:"beam_inertia"`
	FieldDamping float64 `yaml:"field_damping"`

	SignalNoise float64 `yaml:"signal_noise"`
	Persistence float64 `yaml:"persistence"`

	VelocityDimming float64 `yaml:"velocity_dimming"`
	BeamPower       float64 `yaml:"beam_power"`

	TimeSegmentMs float64 `yaml:"time_segment_ms"`
	Decay         int     `yaml:"decay"`

	DebugMode        bool    `yaml:"debug_mode"`
	DotOpacity       float64 `yaml:"dot_opacity"`
	SampleDotOpacity float64 `yaml:"sample_dot_opacity"`
	DotSizeVariation float64 `yaml:"dot_size_variation"`
}

func toDoc(b Bundle) presetDoc {
	return presetDoc{
		Mode:             string(b.Mode),
		TimeDiv:          b.TimeDiv,
		TriggerLevel:     b.TriggerLevel,
		TriggerChannel:   string(b.TriggerChannel),
		AmplDivA:         b.AmplDivA,
		AmplDivB:         b.AmplDivB,
		PositionA:        b.PositionA,
		PositionB:        b.PositionB,
		XPosition:        b.XPosition,
		CoilStrength:     b.CoilStrength,
		BeamInertia:      b.BeamInertia,
		FieldDamping:     b.FieldDamping,
		SignalNoise:      b.SignalNoise,
		Persistence:      b.Persistence,
		VelocityDimming:  b.VelocityDimming,
		BeamPower:        b.BeamPower,
		TimeSegmentMs:    b.TimeSegmentMs,
		Decay:            b.Decay,
		DebugMode:        b.DebugMode,
		DotOpacity:       b.DotOpacity,
		SampleDotOpacity: b.SampleDotOpacity,
		DotSizeVariation: b.DotSizeVariation,
	}
}

func fromDoc(d presetDoc) Bundle {
	b := Bundle{
		Mode:             Mode(d.Mode),
		TimeDiv:          d.TimeDiv,
		TriggerLevel:     d.TriggerLevel,
		TriggerChannel:   TriggerChannel(d.TriggerChannel),
		AmplDivA:         d.AmplDivA,
		AmplDivB:         d.AmplDivB,
		PositionA:        d.PositionA,
		PositionB:        d.PositionB,
		XPosition:        d.XPosition,
		CoilStrength:     d.CoilStrength,
		BeamInertia:      d.BeamInertia,
		FieldDamping:     d.FieldDamping,
		SignalNoise:      d.SignalNoise,
		Persistence:      d.Persistence,
		VelocityDimming:  d.VelocityDimming,
		BeamPower:        d.BeamPower,
		TimeSegmentMs:    d.TimeSegmentMs,
		Decay:            d.Decay,
		DebugMode:        d.DebugMode,
		DotOpacity:       d.DotOpacity,
		SampleDotOpacity: d.SampleDotOpacity,
		DotSizeVariation: d.DotSizeVariation,
	}
	b.Clamp()
	return b
}

// LoadPreset reads a named YAML settings bundle from path. Fields absent
// from the document keep their zero value before clamping, so a minimal
// preset file (e.g. just "mode: xy") is valid.
func LoadPreset(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("scopesettings: read preset %q: %w", path, err)
	}
	var doc presetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Bundle{}, fmt.Errorf("scopesettings: parse preset %q: %w", path, err)
	}
	return fromDoc(doc), nil
}

// SavePreset writes b to path as YAML.
func SavePreset(path string, b Bundle) error {
	data, err := yaml.Marshal(toDoc(b))
	if err != nil {
		return fmt.Errorf("scopesettings: marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("scopesettings: write preset %q: %w", path, err)
	}
	return nil
}
