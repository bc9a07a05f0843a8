package phosphor

import (
	"testing"

	"pgregory.net/rapid"
)

func TestExcitationNonIncreasingInSpeed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dimming := rapid.Float64Range(0, 1).Draw(t, "dimming")
		power := rapid.Float64Range(0, 2).Draw(t, "power")
		s1 := rapid.Float64Range(beamSpotSize, 2000).Draw(t, "s1")
		s2 := rapid.Float64Range(beamSpotSize, 2000).Draw(t, "s2")
		if s1 > s2 {
			s1, s2 = s2, s1
		}

		low := Excitation(s1, dimming, power, 0)
		high := Excitation(s2, dimming, power, 0)
		if high > low+1e-9 {
			t.Fatalf("excitation should not increase with speed: speed %v -> %v, speed %v -> %v", s1, low, s2, high)
		}
	})
}

func TestExcitationNonDecreasingInPower(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		speed := rapid.Float64Range(0, 2000).Draw(t, "speed")
		dimming := rapid.Float64Range(0, 1).Draw(t, "dimming")
		p1 := rapid.Float64Range(0, 2).Draw(t, "p1")
		p2 := rapid.Float64Range(0, 2).Draw(t, "p2")
		if p1 > p2 {
			p1, p2 = p2, p1
		}

		low := Excitation(speed, dimming, p1, 0)
		high := Excitation(speed, dimming, p2, 0)
		if low > high+1e-9 {
			t.Fatalf("excitation should not decrease with power: power %v -> %v, power %v -> %v", p1, low, p2, high)
		}
	})
}

func TestExcitationClampedToUnitRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		speed := rapid.Float64Range(0, 5000).Draw(t, "speed")
		dimming := rapid.Float64Range(0, 1).Draw(t, "dimming")
		power := rapid.Float64Range(0, 10).Draw(t, "power")

		v := Excitation(speed, dimming, power, 0)
		if v < 0 || v > 1 {
			t.Fatalf("excitation out of [0,1]: %v", v)
		}
	})
}

func TestDotRadiusScalesWithSmallerDimension(t *testing.T) {
	r := DotRadius(800, 600)
	want := 600 * dotRadiusFraction
	if r != want {
		t.Errorf("expected radius %v, got %v", want, r)
	}
}
