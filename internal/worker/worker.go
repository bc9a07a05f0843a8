// Package worker implements the host/worker protocol: a single
// goroutine that owns the renderer, the pipeline's physics state and
// the framebuffer, draining an inbound message channel in FIFO order.
package worker

import (
	"image"

	"crtscope/internal/compositor"
	"crtscope/internal/debug"
	"crtscope/internal/pipeline"
	"crtscope/internal/raster"
	"crtscope/internal/sample"
	"crtscope/internal/scopesettings"
)

// RendererType identifies a Renderer implementation a client may
// request.
type RendererType int

const (
	RendererSoftware RendererType = iota
	RendererGPU
)

// InitRequest carries the surface handle and initial geometry. Surface
// is transferred exclusively to the worker: the host must not retain
// or touch it after sending this message.
type InitRequest struct {
	Surface      interface{}
	DPR          float64
	LogicalW     int
	LogicalH     int
	RendererType RendererType
}

// RenderRequest carries one frame's sample buffers and settings.
// Buffers are copied into the message; neither side shares them after
// dispatch.
type RenderRequest struct {
	SamplesA, SamplesB []float32
	SampleRate         int
	Settings           scopesettings.Bundle
}

// SwitchRendererRequest asks the worker to replace its renderer.
type SwitchRendererRequest struct {
	Type RendererType
}

// message is the internal envelope placed on the worker's inbound
// channel. Exactly one of its payload fields is set.
type message struct {
	init     *InitRequest
	render   *RenderRequest
	switchR  *SwitchRendererRequest
	clear    bool
	reset    bool
	snapshot bool
	reply    chan<- Event
}

// EventKind tags a worker → host message.
type EventKind int

const (
	EventInitialized EventKind = iota
	EventReady
	EventSwitchFailed
)

// Event is one worker → host message.
type Event struct {
	Kind               EventKind
	AvailableRenderers []RendererType
	RequestedType      RendererType
	Frame              compositor.Frame

	// Image is a copy of the software framebuffer, set only in replies
	// to Snapshot. Copying keeps the live framebuffer single-writer.
	Image *image.RGBA
}

// Worker owns the renderer, pipeline and framebuffer. Exactly one
// render may be outstanding at a time; a second render submitted
// before the worker has replied with EventReady simply queues behind
// it, preserving FIFO order.
type Worker struct {
	logger *debug.Logger
	inbox  chan message

	renderer   raster.Renderer
	pipe       *pipeline.Pipeline
	lastType   RendererType
	outstanding bool
}

// New starts the worker's message-processing goroutine. canvas sets
// the logical drawing surface size the pipeline maps onto.
func New(canvas sample.Canvas, logger *debug.Logger) *Worker {
	w := &Worker{
		logger: logger,
		inbox:  make(chan message, 1),
		pipe:   pipeline.New(1, canvas, logger),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	for msg := range w.inbox {
		ev := w.handle(msg)
		if msg.reply != nil {
			msg.reply <- ev
		}
	}
}

func (w *Worker) handle(msg message) Event {
	switch {
	case msg.init != nil:
		return w.doInit(msg.init)
	case msg.render != nil:
		return w.doRender(msg.render)
	case msg.switchR != nil:
		return w.doSwitchRenderer(msg.switchR)
	case msg.clear:
		return w.doClear()
	case msg.reset:
		return w.doReset()
	case msg.snapshot:
		return w.doSnapshot()
	default:
		return Event{Kind: EventReady}
	}
}

func (w *Worker) doInit(req *InitRequest) Event {
	r, actual := newRenderer(req.RendererType)
	if err := r.Init(req.Surface, req.DPR, req.LogicalW, req.LogicalH); err != nil {
		if actual == RendererGPU {
			if w.logger != nil {
				w.logger.LogWorkerf(debug.LogLevelWarning, "gpu renderer unavailable (%v), falling back to software", err)
			}
			r, actual = raster.NewSoftware(), RendererSoftware
			_ = r.Init(req.Surface, req.DPR, req.LogicalW, req.LogicalH)
		} else if w.logger != nil {
			w.logger.LogWorkerf(debug.LogLevelError, "renderer init failed: %v", err)
		}
	}
	w.renderer = r
	w.lastType = actual

	available := []RendererType{RendererSoftware}
	if actual == RendererGPU {
		available = append(available, RendererGPU)
	}
	return Event{Kind: EventInitialized, AvailableRenderers: available}
}

func (w *Worker) doRender(req *RenderRequest) Event {
	w.outstanding = true
	defer func() { w.outstanding = false }()

	var frame compositor.Frame
	if req.Settings.Mode == scopesettings.ModeAB {
		frame = w.pipe.RenderAB(req.SamplesA, req.SamplesB, req.SampleRate, req.Settings)
	} else {
		frame = w.pipe.Render(req.SamplesA, req.SamplesB, req.SampleRate, req.Settings)
	}

	if w.renderer != nil {
		pipeline.Draw(w.renderer, frame, req.Settings, 0, w.logger)
	}
	return Event{Kind: EventReady, Frame: frame}
}

func (w *Worker) doSwitchRenderer(req *SwitchRendererRequest) Event {
	// The surface handle was consumed by the previous Init call and
	// cannot be rebound without a host-side rebuild.
	return Event{Kind: EventSwitchFailed, RequestedType: req.Type}
}

func (w *Worker) doClear() Event {
	if w.renderer != nil {
		w.renderer.Clear()
	}
	return Event{Kind: EventReady}
}

func (w *Worker) doReset() Event {
	w.pipe.Reset()
	if w.renderer != nil {
		w.renderer.Clear()
	}
	return Event{Kind: EventReady}
}

func (w *Worker) doSnapshot() Event {
	ev := Event{Kind: EventReady}
	sw, ok := w.renderer.(*raster.Software)
	if !ok {
		// The GPU backend presents straight to its own window; there is
		// no CPU-side framebuffer to copy.
		return ev
	}
	src := sw.Image()
	if src == nil {
		return ev
	}
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	ev.Image = dst
	return ev
}

// send dispatches msg and blocks for its reply. Used internally by the
// exported request helpers below so callers see a synchronous
// request/response API over the FIFO channel.
func (w *Worker) send(msg message) Event {
	reply := make(chan Event, 1)
	msg.reply = reply
	w.inbox <- msg
	return <-reply
}

// Init sends an init message and waits for the worker's response.
func (w *Worker) Init(req InitRequest) Event {
	return w.send(message{init: &req})
}

// Render sends a render message and waits for `ready`. Under the
// backpressure rule, callers (not the worker) are responsible for
// dropping a tick rather than queuing a second render before this
// returns.
func (w *Worker) Render(req RenderRequest) Event {
	return w.send(message{render: &req})
}

// SwitchRenderer sends a switchRenderer message.
func (w *Worker) SwitchRenderer(t RendererType) Event {
	return w.send(message{switchR: &SwitchRendererRequest{Type: t}})
}

// Clear sends a clear message.
func (w *Worker) Clear() Event {
	return w.send(message{clear: true})
}

// ResetBeam sends a reset message.
func (w *Worker) ResetBeam() Event {
	return w.send(message{reset: true})
}

// Snapshot asks the worker for a copy of the current software
// framebuffer, serialized through the FIFO queue so it never races a
// render in progress. Returns an Event whose Image is nil on the GPU
// backend.
func (w *Worker) Snapshot() Event {
	return w.send(message{snapshot: true})
}

// Shutdown closes the inbound channel once all queued messages have
// drained, after which the worker goroutine exits.
func (w *Worker) Shutdown() {
	close(w.inbox)
}

func newRenderer(t RendererType) (raster.Renderer, RendererType) {
	switch t {
	case RendererGPU:
		return raster.NewGPU(), RendererGPU
	default:
		return raster.NewSoftware(), RendererSoftware
	}
}
