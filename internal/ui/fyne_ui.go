package ui

import (
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"crtscope/internal/debug"
	"crtscope/internal/scopesettings"
	"crtscope/internal/ui/panels"
	"crtscope/internal/worker"
)

// FyneUI is the control-surface presenter: the scope trace shown as a
// refreshing canvas image, a full settings panel, preset save/load and
// an optional log viewer. Unlike the SDL presenter it opens no audio
// device; it exists to poke at the pipeline, not to listen to it.
type FyneUI struct {
	app    fyne.App
	window fyne.Window

	worker *worker.Worker
	logger *debug.Logger

	cfg Config

	settingsMu sync.Mutex
	settings   scopesettings.Bundle

	scopeImage  *canvas.Image
	statusLabel *widget.Label

	logViewerPanel *fyne.Container
	updateLogs     func()
	showLogViewer  bool
	splitContent   *container.Split

	running  bool
	loopDone chan struct{}
}

// NewFyneUI builds the control-surface window around w, which must not
// have been initialized yet.
func NewFyneUI(w *worker.Worker, cfg Config) (*FyneUI, error) {
	fyneApp := app.NewWithID("net.crtscope.scope")
	window := fyneApp.NewWindow("crtscope")

	placeholder := image.NewRGBA(image.Rect(0, 0, cfg.LogicalW, cfg.LogicalH))
	scopeImage := canvas.NewImageFromImage(placeholder)
	scopeImage.FillMode = canvas.ImageFillContain
	scopeImage.SetMinSize(fyne.NewSize(float32(cfg.LogicalW), float32(cfg.LogicalH)))

	ui := &FyneUI{
		app:         fyneApp,
		window:      window,
		worker:      w,
		logger:      cfg.Logger,
		cfg:         cfg,
		settings:    cfg.Settings,
		scopeImage:  scopeImage,
		statusLabel: widget.NewLabel("FPS: 0.0"),
	}

	if cfg.Logger != nil {
		ui.logViewerPanel, ui.updateLogs = panels.LogViewerFyne(cfg.Logger, window)
		ui.logViewerPanel.Hide()
	}

	controls := ui.buildControls()
	right := container.NewVBox(controls)
	if ui.logViewerPanel != nil {
		right.Add(ui.logViewerPanel)
	}

	split := container.NewHSplit(scopeImage, container.NewVScroll(right))
	split.SetOffset(0.68)
	ui.splitContent = split

	window.SetContent(container.NewBorder(nil, ui.statusLabel, nil, nil, split))
	window.Resize(fyne.NewSize(float32(cfg.LogicalW)+380, float32(cfg.LogicalH)+60))
	window.CenterOnScreen()
	applyMaximizeHint(window, cfg.Logger)

	return ui, nil
}

func (u *FyneUI) buildControls() fyne.CanvasObject {
	modeSelect := widget.NewSelect([]string{"a", "b", "ab", "xy"}, func(v string) {
		u.mutate(func(s *scopesettings.Bundle) { s.Mode = scopesettings.Mode(v) })
	})
	modeSelect.SetSelected(string(u.settings.Mode))

	triggerSelect := widget.NewSelect([]string{"a", "b"}, func(v string) {
		u.mutate(func(s *scopesettings.Bundle) { s.TriggerChannel = scopesettings.TriggerChannel(v) })
	})
	triggerSelect.SetSelected(string(u.settings.TriggerChannel))

	persistence := u.slider(0, 0.95, u.settings.Persistence, func(s *scopesettings.Bundle, v float64) { s.Persistence = v })
	noise := u.slider(0, 0.2, u.settings.SignalNoise, func(s *scopesettings.Bundle, v float64) { s.SignalNoise = v })
	beamPower := u.slider(0, 2, u.settings.BeamPower, func(s *scopesettings.Bundle, v float64) { s.BeamPower = v })
	dimming := u.slider(0, 1, u.settings.VelocityDimming, func(s *scopesettings.Bundle, v float64) { s.VelocityDimming = v })
	timeSeg := u.slider(0.001, 0.050, u.settings.TimeSegmentMs, func(s *scopesettings.Bundle, v float64) { s.TimeSegmentMs = v })
	coil := u.slider(0.01, 1, u.settings.CoilStrength, func(s *scopesettings.Bundle, v float64) { s.CoilStrength = v })
	inertia := u.slider(0.01, 1, u.settings.BeamInertia, func(s *scopesettings.Bundle, v float64) { s.BeamInertia = v })
	damping := u.slider(0.01, 0.999, u.settings.FieldDamping, func(s *scopesettings.Bundle, v float64) { s.FieldDamping = v })
	trigLevel := u.slider(-1, 1, u.settings.TriggerLevel, func(s *scopesettings.Bundle, v float64) { s.TriggerLevel = v })

	debugCheck := widget.NewCheck("Debug overlay", func(v bool) {
		u.mutate(func(s *scopesettings.Bundle) { s.DebugMode = v })
	})

	resetBtn := widget.NewButton("Reset beam", func() { u.worker.ResetBeam() })
	clearBtn := widget.NewButton("Clear", func() { u.worker.Clear() })

	saveBtn := widget.NewButton("Save preset", func() {
		u.settingsMu.Lock()
		s := u.settings
		u.settingsMu.Unlock()
		if err := scopesettings.SavePreset("preset.yaml", s); err != nil {
			dialog.ShowError(err, u.window)
		}
	})
	loadBtn := widget.NewButton("Load preset", func() {
		s, err := scopesettings.LoadPreset("preset.yaml")
		if err != nil {
			dialog.ShowError(err, u.window)
			return
		}
		u.settingsMu.Lock()
		u.settings = s
		u.settingsMu.Unlock()
	})

	logsBtn := widget.NewButton("Logs", func() {
		if u.logViewerPanel == nil {
			return
		}
		u.showLogViewer = !u.showLogViewer
		if u.showLogViewer {
			u.logViewerPanel.Show()
		} else {
			u.logViewerPanel.Hide()
		}
	})

	return container.NewVBox(
		widget.NewLabel("Mode"), modeSelect,
		widget.NewLabel("Trigger channel"), triggerSelect,
		widget.NewLabel("Trigger level"), trigLevel,
		widget.NewLabel("Persistence"), persistence,
		widget.NewLabel("Signal noise"), noise,
		widget.NewLabel("Beam power"), beamPower,
		widget.NewLabel("Velocity dimming"), dimming,
		widget.NewLabel("Time segment (ms)"), timeSeg,
		widget.NewLabel("Coil strength"), coil,
		widget.NewLabel("Beam inertia"), inertia,
		widget.NewLabel("Field damping"), damping,
		debugCheck,
		container.NewHBox(resetBtn, clearBtn),
		container.NewHBox(saveBtn, loadBtn, logsBtn),
	)
}

func (u *FyneUI) slider(min, max, initial float64, apply func(*scopesettings.Bundle, float64)) *widget.Slider {
	s := widget.NewSlider(min, max)
	s.Step = (max - min) / 200
	s.Value = initial
	s.OnChanged = func(v float64) {
		u.mutate(func(b *scopesettings.Bundle) { apply(b, v) })
	}
	return s
}

func (u *FyneUI) mutate(f func(*scopesettings.Bundle)) {
	u.settingsMu.Lock()
	f(&u.settings)
	u.settings.Clamp()
	u.settingsMu.Unlock()
}

// Run initializes the worker, starts the frame loop and blocks until
// the window is closed.
func (u *FyneUI) Run() error {
	ev := u.worker.Init(worker.InitRequest{
		DPR:          1,
		LogicalW:     u.cfg.LogicalW,
		LogicalH:     u.cfg.LogicalH,
		RendererType: worker.RendererSoftware,
	})
	if ev.Kind != worker.EventInitialized {
		return fmt.Errorf("ui: worker init failed")
	}

	u.running = true
	u.loopDone = make(chan struct{})
	go u.frameLoop()

	u.window.SetCloseIntercept(func() {
		u.running = false
		u.window.Close()
	})
	u.window.ShowAndRun()

	u.running = false
	<-u.loopDone
	u.worker.Shutdown()
	return nil
}

// frameLoop is the host side of the one-frame-in-flight protocol: one
// render dispatched per tick, ticks dropped while one is outstanding.
func (u *FyneUI) frameLoop() {
	bufA := make([]float32, u.cfg.FrameLen)
	bufB := make([]float32, u.cfg.FrameLen)
	results := make(chan *image.RGBA, 1)
	pending := false

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	tickCount := 0
	lastPresent := time.Now()
	fps := 0.0

	for u.running {
		<-ticker.C
		tickCount++

		select {
		case img := <-results:
			pending = false
			if img != nil {
				now := time.Now()
				if dt := now.Sub(lastPresent).Seconds(); dt > 0 {
					fps = 1 / dt
				}
				lastPresent = now
				refreshLogs := u.showLogViewer && u.updateLogs != nil && tickCount%8 == 0
				fyne.Do(func() {
					u.scopeImage.Image = img
					u.scopeImage.Refresh()
					u.statusLabel.SetText(fmt.Sprintf("FPS: %.1f", fps))
					if refreshLogs {
						u.updateLogs()
					}
				})
			}
		default:
		}

		if pending {
			continue
		}

		u.cfg.GenA.Fill(bufA)
		u.cfg.GenB.Fill(bufB)
		a := append([]float32(nil), bufA...)
		b := append([]float32(nil), bufB...)
		u.settingsMu.Lock()
		s := u.settings
		u.settingsMu.Unlock()

		pending = true
		go func() {
			u.worker.Render(worker.RenderRequest{
				SamplesA:   a,
				SamplesB:   b,
				SampleRate: u.cfg.SampleRate,
				Settings:   s,
			})
			snap := u.worker.Snapshot()
			results <- snap.Image
		}()
	}

	if pending {
		<-results
	}
	close(u.loopDone)
}
