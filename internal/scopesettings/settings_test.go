package scopesettings

import "testing"

func TestDefaultIsClamped(t *testing.T) {
	b := Default()
	clamped := b
	clamped.Clamp()
	if b != clamped {
		t.Errorf("Default() is not fixed under Clamp(): %+v vs %+v", b, clamped)
	}
}

func TestClampInvalidMode(t *testing.T) {
	b := Bundle{Mode: Mode("bogus")}
	b.Clamp()
	if b.Mode != ModeXY {
		t.Errorf("invalid mode should fall back to ModeXY, got %q", b.Mode)
	}
}

func TestClampRanges(t *testing.T) {
	b := Bundle{
		TimeDiv:       10,
		TriggerLevel:  5,
		PositionA:     -5,
		BeamInertia:   0,
		FieldDamping:  1.5,
		SignalNoise:   1,
		Persistence:   1,
		VelocityDimming: 2,
		BeamPower:     5,
		TimeSegmentMs: 1,
		Decay:         1,
	}
	b.Clamp()

	if b.TimeDiv != 0.5 {
		t.Errorf("TimeDiv not clamped to max: got %v", b.TimeDiv)
	}
	if b.TriggerLevel != 1 {
		t.Errorf("TriggerLevel not clamped to max: got %v", b.TriggerLevel)
	}
	if b.PositionA != -1 {
		t.Errorf("PositionA not clamped to min: got %v", b.PositionA)
	}
	if b.BeamInertia != 0.01 {
		t.Errorf("BeamInertia not floored: got %v", b.BeamInertia)
	}
	if b.FieldDamping != 0.999 {
		t.Errorf("FieldDamping not capped: got %v", b.FieldDamping)
	}
	if b.SignalNoise != 0.2 {
		t.Errorf("SignalNoise not clamped to max: got %v", b.SignalNoise)
	}
	if b.Persistence != 0.95 {
		t.Errorf("Persistence not clamped to max: got %v", b.Persistence)
	}
	if b.VelocityDimming != 1 {
		t.Errorf("VelocityDimming not clamped to max: got %v", b.VelocityDimming)
	}
	if b.BeamPower != 2 {
		t.Errorf("BeamPower not clamped to max: got %v", b.BeamPower)
	}
	if b.TimeSegmentMs != 0.050 {
		t.Errorf("TimeSegmentMs not clamped to max: got %v", b.TimeSegmentMs)
	}
	if b.Decay != 512 {
		t.Errorf("Decay not clamped to min: got %v", b.Decay)
	}
}

func TestClampNeverErrors(t *testing.T) {
	b := Bundle{TriggerChannel: TriggerChannel("weird")}
	b.Clamp()
	if b.TriggerChannel != TriggerA {
		t.Errorf("invalid trigger channel should fall back to TriggerA, got %q", b.TriggerChannel)
	}
}
