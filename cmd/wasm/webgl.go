//go:build js && wasm

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"syscall/js"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/render"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

const vertexShader = `
attribute vec2 vPosition;
attribute vec4 vColor;
varying vec4 fColor;
void main() {
	gl_Position = vec4(vPosition, 0.0, 1.0);
	fColor = vColor;
}`

const fragmentShader = `
precision mediump float;
varying vec4 fColor;
void main() {
	gl_FragColor = fColor;
}`

// glSurface is a render.Surface over a WebGL canvas.
type glSurface struct {
	gl       js.Value
	width    int
	height   int
	vertices js.Value
	colors   js.Value
	pixel    js.Value
	modes    map[shape.Primitive]js.Value
}

// newGLSurface sets up a WebGL context on canvas. Hit surfaces need exact
// colors so antialiasing is off for them.
func newGLSurface(canvas js.Value, antialias bool, lineWidth float64) (*glSurface, error) {
	gl := canvas.Call("getContext", "webgl", map[string]any{
		"antialias":             antialias,
		"preserveDrawingBuffer": true,
	})
	if gl.IsUndefined() || gl.IsNull() {
		return nil, fmt.Errorf("%w: webgl", render.ErrContextUnavailable)
	}

	program, err := linkProgram(gl)
	if err != nil {
		return nil, err
	}
	gl.Call("useProgram", program)

	s := &glSurface{
		gl:       gl,
		width:    canvas.Get("width").Int(),
		height:   canvas.Get("height").Int(),
		vertices: gl.Call("createBuffer"),
		colors:   gl.Call("createBuffer"),
		pixel:    js.Global().Get("Uint8Array").New(4),
		modes: map[shape.Primitive]js.Value{
			shape.TriangleStrip: gl.Get("TRIANGLE_STRIP"),
			shape.TriangleFan:   gl.Get("TRIANGLE_FAN"),
			shape.Lines:         gl.Get("LINES"),
		},
	}
	s.bindAttribute(program, "vPosition", s.vertices, 2)
	s.bindAttribute(program, "vColor", s.colors, 4)
	gl.Call("viewport", 0, 0, s.width, s.height)
	gl.Call("lineWidth", lineWidth)
	return s, nil
}

func linkProgram(gl js.Value) (js.Value, error) {
	program := gl.Call("createProgram")
	for _, src := range []struct {
		kind string
		code string
	}{{"VERTEX_SHADER", vertexShader}, {"FRAGMENT_SHADER", fragmentShader}} {
		sh := gl.Call("createShader", gl.Get(src.kind))
		gl.Call("shaderSource", sh, src.code)
		gl.Call("compileShader", sh)
		if !gl.Call("getShaderParameter", sh, gl.Get("COMPILE_STATUS")).Bool() {
			return js.Null(), fmt.Errorf("compile %s: %s", src.kind, gl.Call("getShaderInfoLog", sh).String())
		}
		gl.Call("attachShader", program, sh)
	}
	gl.Call("linkProgram", program)
	if !gl.Call("getProgramParameter", program, gl.Get("LINK_STATUS")).Bool() {
		return js.Null(), fmt.Errorf("link program: %s", gl.Call("getProgramInfoLog", program).String())
	}
	return program, nil
}

func (s *glSurface) bindAttribute(program js.Value, name string, buf js.Value, size int) {
	loc := s.gl.Call("getAttribLocation", program, name)
	s.gl.Call("bindBuffer", s.gl.Get("ARRAY_BUFFER"), buf)
	s.gl.Call("vertexAttribPointer", loc, size, s.gl.Get("FLOAT"), false, 0, 0)
	s.gl.Call("enableVertexAttribArray", loc)
}

func (s *glSurface) Size() (int, int) { return s.width, s.height }

func (s *glSurface) Clear(c geom.Color) {
	n := c.Normalized()
	s.gl.Call("clearColor", n[0], n[1], n[2], n[3])
	s.gl.Call("clear", s.gl.Get("COLOR_BUFFER_BIT"))
}

func (s *glSurface) Upload(vertices, colors []float32) {
	s.upload(s.vertices, vertices)
	s.upload(s.colors, colors)
}

func (s *glSurface) upload(buf js.Value, data []float32) {
	raw := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(f))
	}
	bytes := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(bytes, raw)
	floats := js.Global().Get("Float32Array").New(bytes.Get("buffer"))

	s.gl.Call("bindBuffer", s.gl.Get("ARRAY_BUFFER"), buf)
	s.gl.Call("bufferData", s.gl.Get("ARRAY_BUFFER"), floats, s.gl.Get("DYNAMIC_DRAW"))
}

func (s *glSurface) Draw(cmd render.DrawCommand) {
	mode, ok := s.modes[cmd.Mode]
	if !ok {
		return
	}
	s.gl.Call("drawArrays", mode, cmd.First, cmd.Count)
}

func (s *glSurface) ReadPixel(x, y int) [4]uint8 {
	s.gl.Call("readPixels", x, y, 1, 1, s.gl.Get("RGBA"), s.gl.Get("UNSIGNED_BYTE"), s.pixel)
	var out [4]uint8
	js.CopyBytesToGo(out[:], s.pixel)
	return out
}
