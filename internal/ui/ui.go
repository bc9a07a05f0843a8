package ui

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"crtscope/internal/debug"
	"crtscope/internal/scopesettings"
	"crtscope/internal/signalgen"
	"crtscope/internal/worker"
)

// Config carries everything the SDL presenter needs to drive a scope
// session: the two channel generators, the initial settings and the
// worker-facing geometry.
type Config struct {
	GenA, GenB *signalgen.Generator
	Settings   scopesettings.Bundle
	SampleRate int
	FrameLen   int // samples per channel per frame

	LogicalW, LogicalH int
	Scale              int

	Rendezvous worker.Rendezvous
	Logger     *debug.Logger
}

// ScopeUI is the SDL2 presenter: it owns the host-side window, streams
// the worker's software framebuffer into an SDL texture, queues the
// synthetic test tone to the audio device, and translates keyboard
// input into settings changes.
type ScopeUI struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	worker *worker.Worker
	logger *debug.Logger

	genA, genB *signalgen.Generator
	settings   scopesettings.Bundle
	sampleRate int
	frameLen   int
	bufA, bufB []float32

	rendezvous worker.Rendezvous

	audioDev sdl.AudioDeviceID
	audioBuf []byte

	logicalW, logicalH int
	scale              int

	running bool
	pending bool
	results chan *image.RGBA

	fps       float64
	lastFrame time.Time
}

// NewScopeUI creates the SDL window, renderer and audio device and
// binds them to w, which must not have been initialized yet.
func NewScopeUI(w *worker.Worker, cfg Config) (*ScopeUI, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("ui: init SDL: %w", err)
	}

	scale := cfg.Scale
	if scale < 1 {
		scale = 1
	}
	width := int32(cfg.LogicalW * scale)
	height := int32(cfg.LogicalH * scale)

	window, err := sdl.CreateWindow(
		"crtscope",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		width,
		height,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("ui: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("ui: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(cfg.LogicalW),
		int32(cfg.LogicalH),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("ui: create texture: %w", err)
	}

	audioSpec := sdl.AudioSpec{
		Freq:     int32(cfg.SampleRate),
		Format:   sdl.AUDIO_F32,
		Channels: 2,
		Samples:  2048,
	}
	audioDev, err := sdl.OpenAudioDevice("", false, &audioSpec, nil, 0)
	if err != nil {
		// Audio is optional, continue without it.
		if cfg.Logger != nil {
			cfg.Logger.LogUIf(debug.LogLevelWarning, "audio device unavailable: %v", err)
		}
		audioDev = 0
	} else {
		sdl.PauseAudioDevice(audioDev, false)
	}

	return &ScopeUI{
		window:     window,
		renderer:   renderer,
		texture:    texture,
		worker:     w,
		logger:     cfg.Logger,
		genA:       cfg.GenA,
		genB:       cfg.GenB,
		settings:   cfg.Settings,
		sampleRate: cfg.SampleRate,
		frameLen:   cfg.FrameLen,
		bufA:       make([]float32, cfg.FrameLen),
		bufB:       make([]float32, cfg.FrameLen),
		rendezvous: cfg.Rendezvous,
		audioDev:   audioDev,
		audioBuf:   make([]byte, cfg.FrameLen*2*4),
		logicalW:   cfg.LogicalW,
		logicalH:   cfg.LogicalH,
		scale:      scale,
		running:    true,
		results:    make(chan *image.RGBA, 1),
	}, nil
}

// Run drives the host side of the one-frame-in-flight protocol until
// the window is closed. If the worker has not acknowledged the previous
// render by the next tick, that tick's frame is dropped, never queued.
func (u *ScopeUI) Run() error {
	defer u.Cleanup()

	ev := u.worker.Init(worker.InitRequest{
		DPR:          1,
		LogicalW:     u.logicalW,
		LogicalH:     u.logicalH,
		RendererType: worker.RendererSoftware,
	})
	if ev.Kind != worker.EventInitialized {
		return fmt.Errorf("ui: worker init failed")
	}

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for u.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			u.handleEvent(event)
		}

		select {
		case img := <-u.results:
			u.pending = false
			if img != nil {
				u.present(img)
			}
		default:
		}

		if !u.pending {
			u.dispatchFrame()
		}

		<-ticker.C
	}

	// Let an in-flight render drain before the worker shuts down.
	if u.pending {
		<-u.results
	}
	return nil
}

// dispatchFrame generates the next pair of sample buffers, queues them
// to the audio device and hands them to the worker on a goroutine so
// the event loop never blocks on a render.
func (u *ScopeUI) dispatchFrame() {
	u.genA.Fill(u.bufA)
	u.genB.Fill(u.bufB)
	u.queueAudio()

	// Copy into the message so neither side shares the live buffers.
	a := append([]float32(nil), u.bufA...)
	b := append([]float32(nil), u.bufB...)
	settings := u.settings

	u.pending = true
	go func() {
		u.worker.Render(worker.RenderRequest{
			SamplesA:   a,
			SamplesB:   b,
			SampleRate: u.sampleRate,
			Settings:   settings,
		})
		snap := u.worker.Snapshot()
		u.results <- snap.Image
	}()
}

func (u *ScopeUI) present(img *image.RGBA) {
	w := img.Rect.Dx()
	if w*4 != img.Stride {
		return
	}
	if err := u.texture.Update(nil, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		if u.logger != nil {
			u.logger.LogUIf(debug.LogLevelError, "texture update: %v", err)
		}
		return
	}
	u.renderer.Clear()
	u.renderer.Copy(u.texture, nil, nil)
	u.renderer.Present()

	now := time.Now()
	if !u.lastFrame.IsZero() {
		if dt := now.Sub(u.lastFrame).Seconds(); dt > 0 {
			u.fps = 1 / dt
		}
	}
	u.lastFrame = now
}

// queueAudio interleaves the two channels into stereo float32 frames
// and queues them, skipping the frame when the device queue is already
// two frames deep.
func (u *ScopeUI) queueAudio() {
	if u.audioDev == 0 {
		return
	}
	maxQueued := uint32(len(u.audioBuf) * 2)
	if sdl.GetQueuedAudioSize(u.audioDev) >= maxQueued {
		return
	}
	for i := 0; i < u.frameLen; i++ {
		l := u.bufA[i]
		r := u.bufB[i]
		lb := (*[4]byte)(unsafe.Pointer(&l))
		rb := (*[4]byte)(unsafe.Pointer(&r))
		copy(u.audioBuf[i*8:], lb[:])
		copy(u.audioBuf[i*8+4:], rb[:])
	}
	if err := sdl.QueueAudio(u.audioDev, u.audioBuf); err != nil && u.logger != nil {
		u.logger.LogUIf(debug.LogLevelWarning, "queue audio: %v", err)
	}
}

func (u *ScopeUI) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		u.running = false
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			u.handleKeyDown(e.Keysym.Sym)
		}
	}
}

func (u *ScopeUI) handleKeyDown(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE:
		u.running = false
	case sdl.K_1:
		u.settings.Mode = scopesettings.ModeA
	case sdl.K_2:
		u.settings.Mode = scopesettings.ModeB
	case sdl.K_3:
		u.settings.Mode = scopesettings.ModeAB
	case sdl.K_4:
		u.settings.Mode = scopesettings.ModeXY
	case sdl.K_d:
		u.settings.DebugMode = !u.settings.DebugMode
	case sdl.K_p:
		if sdl.GetModState()&sdl.KMOD_SHIFT != 0 {
			u.settings.Persistence -= 0.05
		} else {
			u.settings.Persistence += 0.05
		}
	case sdl.K_n:
		if sdl.GetModState()&sdl.KMOD_SHIFT != 0 {
			u.settings.SignalNoise -= 0.01
		} else {
			u.settings.SignalNoise += 0.01
		}
	case sdl.K_r:
		u.worker.ResetBeam()
	case sdl.K_c:
		u.worker.Clear()
	case sdl.K_g:
		u.requestGPU()
	}
	u.settings.Clamp()
}

// requestGPU asks the worker to switch backends. The surface has been
// consumed by init, so the worker answers switchFailed; the preference
// is persisted through the rendezvous so the next launch honors it.
func (u *ScopeUI) requestGPU() {
	ev := u.worker.SwitchRenderer(worker.RendererGPU)
	if ev.Kind == worker.EventSwitchFailed {
		if err := u.rendezvous.Save(ev.RequestedType); err != nil && u.logger != nil {
			u.logger.LogUIf(debug.LogLevelWarning, "save renderer preference: %v", err)
		}
		if u.logger != nil {
			u.logger.LogUIf(debug.LogLevelInfo, "renderer switch needs a surface rebuild; restart to apply")
		}
	}
}

// FPS returns the most recent presented-frame rate.
func (u *ScopeUI) FPS() float64 { return u.fps }

// Settings returns the current settings bundle.
func (u *ScopeUI) Settings() scopesettings.Bundle { return u.settings }

// Cleanup releases SDL resources and stops the worker.
func (u *ScopeUI) Cleanup() {
	u.worker.Shutdown()
	if u.audioDev != 0 {
		sdl.CloseAudioDevice(u.audioDev)
	}
	if u.texture != nil {
		u.texture.Destroy()
	}
	if u.renderer != nil {
		u.renderer.Destroy()
	}
	if u.window != nil {
		u.window.Destroy()
	}
	sdl.Quit()
}
