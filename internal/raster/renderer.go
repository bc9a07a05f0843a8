// Package raster implements the renderer abstraction the compositor
// draws through, with two concrete backends: a software 2D
// rasterizer (software.go) and a GPU-accelerated one (gpu.go). Switching
// backends at runtime requires the surface handle to be recreated; the
// worker (internal/worker) coordinates that.
package raster

// Color is an 8-bit-per-channel RGB color. Opacity is passed separately
// to every draw call rather than folded into an alpha channel here.
type Color struct {
	R, G, B uint8
}

// Point is a device-pixel position to stroke through.
type Point struct {
	X, Y float64
}

// Renderer is the surface-agnostic drawing contract the compositor
// targets.
type Renderer interface {
	// Init (re)binds the renderer to surface at the given device pixel
	// ratio and pixel dimensions. Called once at startup and again any
	// time the backend is switched or the surface is resized.
	Init(surface interface{}, dpr float64, width, height int) error

	// ClearWithPersistence fills the framebuffer with the background
	// color at the given alpha, decaying prior content geometrically.
	ClearWithPersistence(alpha float64)

	// Clear wipes the framebuffer to the background color at full
	// opacity, discarding all persistence history.
	Clear()

	// StrokeSegment draws a round-capped, round-joined polyline through
	// points at the given color, opacity and width (device pixels).
	StrokeSegment(points []Point, color Color, opacity, width float64)

	// FillDot draws a filled circle of radius r centered at (x, y).
	FillDot(x, y, r float64, color Color, opacity float64)

	// DrawFPS overlays the current frames-per-second figure, used only
	// in debug presentation.
	DrawFPS(fps float64)

	// Present flushes the frame to the surface.
	Present()

	// Close releases any backend-specific resources.
	Close() error
}

// Backend identifies a concrete Renderer implementation.
type Backend int

const (
	BackendSoftware Backend = iota
	BackendGPU
)

func (b Backend) String() string {
	switch b {
	case BackendSoftware:
		return "software"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// BackgroundColor is the dark green CRT tint used by ClearWithPersistence
// and Clear.
var BackgroundColor = Color{R: 26, G: 31, B: 26}

// TraceColor is the P31-green used for trace strokes.
var TraceColor = Color{R: 70, G: 255, B: 130}

// HighlightColor is used for direction-change dots.
var HighlightColor = Color{R: 190, G: 255, B: 210}

// DebugInterpolatedColor and DebugOriginalColor are the debug-only dot
// colors for the interpolation overlay.
var (
	DebugInterpolatedColor = Color{R: 255, G: 60, B: 60}
	DebugOriginalColor     = Color{R: 60, G: 120, B: 255}
)
