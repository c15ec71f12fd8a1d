//go:build js && wasm

package main

import (
	"errors"
	"log/slog"
	"syscall/js"

	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

var (
	ed      *editor.Editor
	height  float64
	onFrame js.Func
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", js.FuncOf(initEditor))

	// --- Commands (frontend → editor) ---
	api.Set("setMode", js.FuncOf(setMode))
	api.Set("pointerDown", js.FuncOf(pointer((*editor.Editor).PointerDown)))
	api.Set("pointerMove", js.FuncOf(pointer((*editor.Editor).PointerMove)))
	api.Set("pointerUp", js.FuncOf(pointer((*editor.Editor).PointerUp)))
	api.Set("finishPolygon", js.FuncOf(finishPolygon))
	api.Set("toConvexHull", js.FuncOf(toConvexHull))
	api.Set("setAttribute", js.FuncOf(setAttribute))
	api.Set("setVertexAttribute", js.FuncOf(setVertexAttribute))
	api.Set("setCreateAttribute", js.FuncOf(setCreateAttribute))
	api.Set("load", js.FuncOf(load))
	api.Set("loadSample", js.FuncOf(loadSample))

	// --- Queries (frontend ← editor) ---
	api.Set("save", js.FuncOf(save))
	api.Set("pick", js.FuncOf(pick))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getVertexAttributes", js.FuncOf(getVertexAttributes))
	api.Set("getCreateAttributes", js.FuncOf(getCreateAttributes))
	api.Set("getState", js.FuncOf(getState))
	api.Set("getFrame", js.FuncOf(getFrame))

	js.Global().Set("webcad", api)
	js.Global().Set("webcadWasmReady", js.ValueOf(true))

	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

var errNotReady = errors.New("editor not initialized")

// initEditor(canvasId, options?) binds the editor to a canvas and starts
// the animation loop. The hit surface is a hidden canvas of the same size.
func initEditor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(errors.New("missing canvas id"))
	}
	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", args[0].String())
	if canvas.IsNull() {
		return result(errors.New("canvas not found"))
	}

	opts := editor.DefaultOptions()
	opts.Width = canvas.Get("width").Int()
	opts.Height = canvas.Get("height").Int()
	if len(args) > 1 && args[1].Type() == js.TypeObject {
		if v := args[1].Get("tolerance"); v.Type() == js.TypeNumber {
			opts.Tolerance = v.Float()
		}
		if v := args[1].Get("rotationStep"); v.Type() == js.TypeNumber {
			opts.RotationStep = v.Float()
		}
	}

	visible, err := newGLSurface(canvas, true, 1)
	if err != nil {
		return result(err)
	}
	hitCanvas := doc.Call("createElement", "canvas")
	hitCanvas.Set("width", opts.Width)
	hitCanvas.Set("height", opts.Height)
	hit, err := newGLSurface(hitCanvas, false, opts.HitLineWidth)
	if err != nil {
		return result(err)
	}

	ed, err = editor.New(visible, hit, opts)
	if err != nil {
		return result(err)
	}
	height = float64(opts.Height)

	if onFrame.IsUndefined() {
		onFrame = js.FuncOf(func(this js.Value, args []js.Value) any {
			ed.Tick()
			js.Global().Call("requestAnimationFrame", onFrame)
			return nil
		})
		js.Global().Call("requestAnimationFrame", onFrame)
	}
	slog.Info("editor ready", "width", opts.Width, "height", opts.Height)
	return result(nil)
}

// canvasPoint converts offsetX/offsetY, origin top-left, to canvas pixels
// with the origin at the lower left.
func canvasPoint(args []js.Value) (float64, float64, bool) {
	if ed == nil || len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), height - args[1].Float(), true
}

func pointer(fn func(*editor.Editor, float64, float64)) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		if x, y, ok := canvasPoint(args); ok {
			fn(ed, x, y)
		}
		return nil
	}
}

func setMode(this js.Value, args []js.Value) any {
	if ed == nil || len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.SetMode(editor.Mode(args[0].String())))
}

func finishPolygon(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf(false)
	}
	_, ok := ed.FinishPolygon()
	return js.ValueOf(ok)
}

func toConvexHull(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.ToConvexHull())
}

func setAttribute(this js.Value, args []js.Value) any {
	if ed == nil || len(args) < 2 {
		return result(errNotReady)
	}
	return result(ed.SetAttribute(args[0].String(), args[1].String()))
}

func setVertexAttribute(this js.Value, args []js.Value) any {
	x, y, ok := canvasPoint(args)
	if !ok || len(args) < 4 {
		return result(errNotReady)
	}
	return result(ed.SetVertexAttribute(x, y, args[2].String(), args[3].String()))
}

func setCreateAttribute(this js.Value, args []js.Value) any {
	if ed == nil || len(args) < 3 {
		return result(errNotReady)
	}
	return result(ed.SetCreateAttribute(shape.Kind(args[0].String()), args[1].String(), args[2].String()))
}

// load(json) replaces the drawing, asking before a non-empty one is
// discarded.
func load(this js.Value, args []js.Value) any {
	if ed == nil || len(args) < 1 {
		return result(errNotReady)
	}
	confirm := func() bool {
		return js.Global().Call("confirm", "Discard the current drawing?").Bool()
	}
	return result(ed.Load([]byte(args[0].String()), confirm))
}

func loadSample(this js.Value, args []js.Value) any {
	if ed == nil {
		return result(errNotReady)
	}
	ed.LoadSample()
	return result(nil)
}

func save(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf("[]")
	}
	data, err := ed.Save()
	if err != nil {
		slog.Error("save drawing", "error", err)
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func pick(this js.Value, args []js.Value) any {
	x, y, ok := canvasPoint(args)
	if !ok {
		return js.ValueOf(map[string]any{"shapeId": 0, "region": "body"})
	}
	p := ed.Pick(x, y)
	return js.ValueOf(map[string]any{"shapeId": p.ShapeID, "region": p.Region.String()})
}

func getSelection(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(ed.SelectionJSON())
}

func getVertexAttributes(this js.Value, args []js.Value) any {
	x, y, ok := canvasPoint(args)
	if !ok {
		return js.ValueOf("[]")
	}
	return js.ValueOf(ed.VertexAttributesJSON(x, y))
}

func getCreateAttributes(this js.Value, args []js.Value) any {
	if ed == nil || len(args) < 1 {
		return js.ValueOf("[]")
	}
	return js.ValueOf(ed.CreateAttributesJSON(shape.Kind(args[0].String())))
}

func getState(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(ed.StateJSON())
}

func getFrame(this js.Value, args []js.Value) any {
	if ed == nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(ed.FrameJSON())
}
