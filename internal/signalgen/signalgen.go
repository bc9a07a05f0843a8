// Package signalgen generates synthetic test waveforms for the demo CLI
// and integration tests. It is deliberately not a collaborator of the
// pre-processor: the rendering core consumes whatever sample buffers a
// host hands it, and this package is just one such host-side source.
package signalgen

import "math"

// Waveform selects the generated wave shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
)

// Generator produces one channel of samples via a phase accumulator.
// Phase wraps at 2π to keep continuity across Fill calls.
type Generator struct {
	Wave       Waveform
	Frequency  float64 // Hz
	Amplitude  float64 // peak, [0, 1]
	PhaseShift float64 // radians, applied on top of the accumulator

	phase          float64
	phaseIncrement float64
	sampleRate     int
}

// New creates a Generator for the given wave at freq Hz, amplitude amp.
func New(wave Waveform, freq, amp float64, sampleRate int) *Generator {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	g := &Generator{
		Wave:       wave,
		Frequency:  freq,
		Amplitude:  amp,
		sampleRate: sampleRate,
	}
	g.updatePhaseIncrement()
	return g
}

func (g *Generator) updatePhaseIncrement() {
	g.phaseIncrement = g.Frequency / float64(g.sampleRate) * 2 * math.Pi
}

// SetFrequency retunes the generator without resetting phase, so a
// frequency sweep stays click-free.
func (g *Generator) SetFrequency(freq float64) {
	g.Frequency = freq
	g.updatePhaseIncrement()
}

// Fill overwrites buf with the next len(buf) samples.
func (g *Generator) Fill(buf []float32) {
	for i := range buf {
		buf[i] = float32(g.sample(g.phase+g.PhaseShift) * g.Amplitude)

		g.phase += g.phaseIncrement
		if g.phase >= 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}
}

// Next returns a freshly allocated buffer of n samples.
func (g *Generator) Next(n int) []float32 {
	buf := make([]float32, n)
	g.Fill(buf)
	return buf
}

func (g *Generator) sample(phase float64) float64 {
	phase = math.Mod(phase, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	switch g.Wave {
	case WaveSquare:
		if phase < math.Pi {
			return 1
		}
		return -1
	case WaveTriangle:
		// Rises from -1 to 1 over the first half cycle, falls back over
		// the second.
		t := phase / (2 * math.Pi)
		if t < 0.5 {
			return t*4 - 1
		}
		return 3 - t*4
	case WaveSawtooth:
		return phase/(2*math.Pi)*2 - 1
	default:
		return math.Sin(phase)
	}
}
