package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"crtscope/internal/debug"
	"crtscope/internal/sample"
	"crtscope/internal/scopesettings"
	"crtscope/internal/signalgen"
	"crtscope/internal/ui"
	"crtscope/internal/worker"
)

func init() {
	// GLFW (gpu renderer path) requires the main goroutine to stay on
	// the main OS thread.
	runtime.LockOSThread()
}

func main() {
	mode := flag.String("mode", "xy", "display mode: a, b, ab, xy")
	wave := flag.String("wave", "sine", "test waveform: sine, square, triangle, saw")
	freq := flag.Float64("freq", 440, "channel A frequency (Hz)")
	freqB := flag.Float64("freq-b", 0, "channel B frequency (Hz, 0 = same as A)")
	noise := flag.Float64("noise", 0, "signal noise amount (0-0.2)")
	preset := flag.String("preset", "", "path to a YAML settings preset")
	uiKind := flag.String("ui", "sdl", "presenter: sdl or fyne")
	rendererFlag := flag.String("renderer", "", "renderer backend: software or gpu (default: last used)")
	scale := flag.Int("scale", 1, "display scale (sdl presenter)")
	sampleRate := flag.Int("samplerate", 48000, "sample rate (Hz)")
	frameLen := flag.Int("framelen", 4096, "samples per channel per frame")
	enableLogging := flag.Bool("log", false, "enable pipeline logging")
	flag.Parse()

	var logger *debug.Logger
	if *enableLogging {
		logger = debug.NewLogger(10000)
		logger.SetComponentEnabled(debug.ComponentSample, true)
		logger.SetComponentEnabled(debug.ComponentPhysics, true)
		logger.SetComponentEnabled(debug.ComponentInterp, true)
		logger.SetComponentEnabled(debug.ComponentSegment, true)
		logger.SetComponentEnabled(debug.ComponentPhosphor, true)
		logger.SetComponentEnabled(debug.ComponentCompositor, true)
		logger.SetComponentEnabled(debug.ComponentRenderer, true)
		logger.SetComponentEnabled(debug.ComponentWorker, true)
		logger.SetComponentEnabled(debug.ComponentUI, true)
		defer logger.Shutdown()
	}

	settings := scopesettings.Default()
	if *preset != "" {
		loaded, err := scopesettings.LoadPreset(*preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset: %v\n", err)
			os.Exit(1)
		}
		settings = loaded
	}
	settings.Mode = scopesettings.Mode(*mode)
	settings.SignalNoise = *noise
	settings.Clamp()

	waveform, err := parseWave(*wave)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fb := *freqB
	if fb == 0 {
		fb = *freq
	}
	genA := signalgen.New(waveform, *freq, 0.8, *sampleRate)
	genB := signalgen.New(waveform, fb, 0.8, *sampleRate)
	// Quadrature on B turns equal-frequency XY input into a circle.
	genB.PhaseShift = math.Pi / 2

	rendezvous := worker.NewRendezvous(rendezvousPath())
	rendererType := rendezvous.Load()
	if *rendererFlag != "" {
		switch *rendererFlag {
		case "software":
			rendererType = worker.RendererSoftware
		case "gpu":
			rendererType = worker.RendererGPU
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown renderer %q\n", *rendererFlag)
			os.Exit(1)
		}
		if err := rendezvous.Save(rendererType); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	const logicalW, logicalH = 600, 600
	cfg := ui.Config{
		GenA:       genA,
		GenB:       genB,
		Settings:   settings,
		SampleRate: *sampleRate,
		FrameLen:   *frameLen,
		LogicalW:   logicalW,
		LogicalH:   logicalH,
		Scale:      *scale,
		Rendezvous: rendezvous,
		Logger:     logger,
	}

	w := worker.New(sample.Canvas{Width: logicalW, Height: logicalH}, logger)

	switch {
	case rendererType == worker.RendererGPU:
		err = ui.RunGL(w, cfg)
	case *uiKind == "fyne":
		var fui *ui.FyneUI
		fui, err = ui.NewFyneUI(w, cfg)
		if err == nil {
			err = fui.Run()
		}
	default:
		var sui *ui.ScopeUI
		sui, err = ui.NewScopeUI(w, cfg)
		if err == nil {
			err = sui.Run()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseWave(name string) (signalgen.Waveform, error) {
	switch name {
	case "sine":
		return signalgen.WaveSine, nil
	case "square":
		return signalgen.WaveSquare, nil
	case "triangle":
		return signalgen.WaveTriangle, nil
	case "saw":
		return signalgen.WaveSawtooth, nil
	default:
		return 0, fmt.Errorf("unknown waveform %q", name)
	}
}

func rendezvousPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "crtscope", "renderer.toml")
}
