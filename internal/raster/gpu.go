package raster

import (
	"fmt"
	"math"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GPU is the GPU-accelerated backend. It owns a GLFW window/context and
// issues immediate-mode-style draws through a minimal GL 3.3 pipeline:
// one shared shader, one dynamic vertex buffer per draw call. This is
// deliberately simple rather than batched, matching the software
// backend's one-call-per-primitive shape so the two stay interchangeable
// at the Renderer interface.
type GPU struct {
	window   *glfw.Window
	program  uint32
	vao, vbo uint32
	colorLoc int32
	w, h     int
	dpr      float64
}

// NewGPU constructs an uninitialized GPU renderer; call Init before
// issuing draw calls.
func NewGPU() *GPU {
	return &GPU{}
}

func (g *GPU) Init(surface interface{}, dpr float64, width, height int) error {
	if dpr <= 0 {
		dpr = 1
	}
	g.dpr = dpr
	g.w, g.h = width, height

	win, ok := surface.(*glfw.Window)
	if !ok {
		return fmt.Errorf("raster: gpu init: surface is not a *glfw.Window")
	}
	g.window = win
	g.window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("raster: gpu init: %w", err)
	}
	gl.Viewport(0, 0, int32(float64(width)*dpr), int32(float64(height)*dpr))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	program, err := buildProgram()
	if err != nil {
		return fmt.Errorf("raster: gpu init: %w", err)
	}
	g.program = program
	g.colorLoc = gl.GetUniformLocation(program, gl.Str("uColor\x00"))

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)

	g.Clear()
	return nil
}

func (g *GPU) ClearWithPersistence(alpha float64) {
	if g.window == nil {
		return
	}
	g.window.MakeContextCurrent()
	bg := BackgroundColor
	g.drawFullscreenQuad(bg, alpha)
}

func (g *GPU) Clear() {
	if g.window == nil {
		return
	}
	g.window.MakeContextCurrent()
	bg := BackgroundColor
	gl.ClearColor(f32c(bg.R), f32c(bg.G), f32c(bg.B), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (g *GPU) StrokeSegment(points []Point, color Color, opacity, width float64) {
	if g.window == nil || len(points) < 2 || opacity <= 0 {
		return
	}
	g.window.MakeContextCurrent()

	half := width * g.dpr / 2
	if half < 0.5 {
		half = 0.5
	}

	var verts []float32
	for i := 0; i < len(points)-1; i++ {
		verts = append(verts, quadVerts(g.ndc(points[i]), g.ndc(points[i+1]), half*g.ndcScaleX(), half*g.ndcScaleY())...)
	}
	for _, p := range points {
		verts = append(verts, circleVerts(g.ndc(p), half*g.ndcScaleX(), half*g.ndcScaleY())...)
	}
	g.drawTriangles(verts, color, opacity)
}

func (g *GPU) FillDot(x, y, r float64, color Color, opacity float64) {
	if g.window == nil || opacity <= 0 || r <= 0 {
		return
	}
	g.window.MakeContextCurrent()
	verts := circleVerts(g.ndc(Point{X: x, Y: y}), r*g.dpr*g.ndcScaleX(), r*g.dpr*g.ndcScaleY())
	g.drawTriangles(verts, color, opacity)
}

// DrawFPS is intentionally a no-op on the GPU backend: text rendering
// would require a glyph atlas this pipeline does not otherwise need,
// and the debug overlay is equally available via the software backend.
func (g *GPU) DrawFPS(fps float64) {}

func (g *GPU) Present() {
	if g.window == nil {
		return
	}
	g.window.SwapBuffers()
}

func (g *GPU) Close() error {
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	if g.program != 0 {
		gl.DeleteProgram(g.program)
	}
	g.window = nil
	return nil
}

func (g *GPU) drawFullscreenQuad(c Color, opacity float64) {
	verts := []float32{
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	}
	g.drawTriangles(verts, c, opacity)
}

func (g *GPU) drawTriangles(verts []float32, c Color, opacity float64) {
	if len(verts) == 0 {
		return
	}
	gl.UseProgram(g.program)
	gl.Uniform4f(g.colorLoc, f32c(c.R), f32c(c.G), f32c(c.B), float32(clamp01(opacity)))

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(verts)/2))
}

// ndc converts a logical-pixel point to normalized device coordinates.
// The viewport covers width*dpr x height*dpr device pixels, but NDC is
// resolution-independent, so dpr cancels out of the position mapping
// and only matters for stroke/dot radii (ndcScaleX/Y below).
func (g *GPU) ndc(p Point) Point {
	x := p.X/float64(g.w)*2 - 1
	y := 1 - p.Y/float64(g.h)*2
	return Point{X: x, Y: y}
}

func (g *GPU) ndcScaleX() float64 { return 2 / (float64(g.w) * g.dpr) }
func (g *GPU) ndcScaleY() float64 { return 2 / (float64(g.h) * g.dpr) }

func quadVerts(a, b Point, halfX, halfY float64) []float32 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	nx, ny := -dy/length*halfX, dx/length*halfY
	p1 := Point{a.X + nx, a.Y + ny}
	p2 := Point{b.X + nx, b.Y + ny}
	p3 := Point{b.X - nx, b.Y - ny}
	p4 := Point{a.X - nx, a.Y - ny}
	return []float32{
		f32(p1.X), f32(p1.Y), f32(p2.X), f32(p2.Y), f32(p3.X), f32(p3.Y),
		f32(p1.X), f32(p1.Y), f32(p3.X), f32(p3.Y), f32(p4.X), f32(p4.Y),
	}
}

func circleVerts(c Point, rX, rY float64) []float32 {
	const segments = 16
	var out []float32
	prev := Point{c.X + rX, c.Y}
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		cur := Point{c.X + rX*math.Cos(theta), c.Y + rY*math.Sin(theta)}
		out = append(out,
			f32(c.X), f32(c.Y),
			f32(prev.X), f32(prev.Y),
			f32(cur.X), f32(cur.Y),
		)
		prev = cur
	}
	return out
}

func f32c(b uint8) float32 { return float32(b) / 255 }

const vertexShaderSrc = `
#version 330 core
layout(location = 0) in vec2 aPos;
void main() {
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const fragmentShaderSrc = `
#version 330 core
uniform vec4 uColor;
out vec4 fragColor;
void main() {
	fragColor = uColor;
}
` + "\x00"

func buildProgram() (uint32, error) {
	vs, err := compileShader(vertexShaderSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentShaderSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return 0, fmt.Errorf("raster: link program: %s", string(log))
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		return 0, fmt.Errorf("raster: compile shader: %s", string(log))
	}
	return shader, nil
}
