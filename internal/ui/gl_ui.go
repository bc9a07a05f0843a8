package ui

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"crtscope/internal/debug"
	"crtscope/internal/scopesettings"
	"crtscope/internal/worker"
)

// RunGL drives the pipeline against the GPU renderer backend: a GLFW
// window is created on the calling thread (which must be locked to the
// OS thread) and handed to the worker as the surface, after which the
// GPU renderer presents directly via buffer swaps; there is no
// host-side framebuffer copy on this path. The audio device is not
// opened here; the GL path exists to exercise the GPU backend, and the
// SDL presenter remains the full demo surface.
func RunGL(w *worker.Worker, cfg Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("ui: init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(cfg.LogicalW, cfg.LogicalH, "crtscope (gpu)", nil, nil)
	if err != nil {
		return fmt.Errorf("ui: create glfw window: %w", err)
	}

	ev := w.Init(worker.InitRequest{
		Surface:      win,
		DPR:          1,
		LogicalW:     cfg.LogicalW,
		LogicalH:     cfg.LogicalH,
		RendererType: worker.RendererGPU,
	})
	gpuAvailable := false
	for _, r := range ev.AvailableRenderers {
		if r == worker.RendererGPU {
			gpuAvailable = true
		}
	}
	if !gpuAvailable {
		w.Shutdown()
		return fmt.Errorf("ui: gpu renderer unavailable on this machine")
	}

	settings := cfg.Settings
	bufA := make([]float32, cfg.FrameLen)
	bufB := make([]float32, cfg.FrameLen)
	pending := false
	done := make(chan struct{}, 1)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			win.SetShouldClose(true)
		case glfw.Key1:
			settings.Mode = scopesettings.ModeA
		case glfw.Key2:
			settings.Mode = scopesettings.ModeB
		case glfw.Key3:
			settings.Mode = scopesettings.ModeAB
		case glfw.Key4:
			settings.Mode = scopesettings.ModeXY
		case glfw.KeyD:
			settings.DebugMode = !settings.DebugMode
		case glfw.KeyP:
			if mods&glfw.ModShift != 0 {
				settings.Persistence -= 0.05
			} else {
				settings.Persistence += 0.05
			}
		case glfw.KeyR:
			w.ResetBeam()
		case glfw.KeyC:
			w.Clear()
		}
		settings.Clamp()
	})

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for !win.ShouldClose() {
		glfw.PollEvents()

		select {
		case <-done:
			pending = false
		default:
		}

		if !pending {
			cfg.GenA.Fill(bufA)
			cfg.GenB.Fill(bufB)
			a := append([]float32(nil), bufA...)
			b := append([]float32(nil), bufB...)
			s := settings

			pending = true
			go func() {
				w.Render(worker.RenderRequest{
					SamplesA:   a,
					SamplesB:   b,
					SampleRate: cfg.SampleRate,
					Settings:   s,
				})
				done <- struct{}{}
			}()
		} else if cfg.Logger != nil {
			cfg.Logger.LogUIf(debug.LogLevelTrace, "frame dropped, render still in flight")
		}

		<-ticker.C
	}

	if pending {
		<-done
	}
	w.Shutdown()
	return nil
}
