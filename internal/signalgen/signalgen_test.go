package signalgen

import (
	"math"
	"testing"
)

func TestSineStaysInAmplitudeBounds(t *testing.T) {
	g := New(WaveSine, 440, 0.8, 48000)
	buf := g.Next(4096)
	for i, v := range buf {
		if v > 0.8 || v < -0.8 {
			t.Fatalf("sample %d = %f exceeds amplitude 0.8", i, v)
		}
	}
}

func TestSquareIsBipolar(t *testing.T) {
	g := New(WaveSquare, 1000, 1, 48000)
	buf := g.Next(4096)
	var hi, lo bool
	for _, v := range buf {
		if v == 1 {
			hi = true
		}
		if v == -1 {
			lo = true
		}
		if v != 1 && v != -1 {
			t.Fatalf("square sample %f is not ±1", v)
		}
	}
	if !hi || !lo {
		t.Errorf("square wave must visit both rails, hi=%v lo=%v", hi, lo)
	}
}

func TestPhaseContinuityAcrossFills(t *testing.T) {
	g1 := New(WaveSine, 440, 1, 48000)
	g2 := New(WaveSine, 440, 1, 48000)

	whole := g1.Next(512)
	first := g2.Next(256)
	second := g2.Next(256)

	for i := 0; i < 256; i++ {
		if whole[i] != first[i] {
			t.Fatalf("sample %d differs between one fill and two", i)
		}
		if whole[256+i] != second[i] {
			t.Fatalf("sample %d after the split differs, phase not continuous", 256+i)
		}
	}
}

func TestPhaseShiftProducesQuadrature(t *testing.T) {
	sin := New(WaveSine, 440, 1, 48000)
	cos := New(WaveSine, 440, 1, 48000)
	cos.PhaseShift = math.Pi / 2

	s := sin.Next(64)
	c := cos.Next(64)
	for i := range s {
		phase := 2 * math.Pi * 440 * float64(i) / 48000
		if math.Abs(float64(c[i])-math.Cos(phase)) > 1e-5 {
			t.Fatalf("sample %d: quadrature channel %f != cos %f", i, c[i], math.Cos(phase))
		}
		if math.Abs(float64(s[i])-math.Sin(phase)) > 1e-5 {
			t.Fatalf("sample %d: in-phase channel %f != sin %f", i, s[i], math.Sin(phase))
		}
	}
}

func TestSetFrequencyKeepsPhase(t *testing.T) {
	g := New(WaveSawtooth, 100, 1, 48000)
	g.Next(100)
	before := g.phase
	g.SetFrequency(200)
	if g.phase != before {
		t.Errorf("retuning must not reset phase: %f != %f", g.phase, before)
	}
}
