// Package editor is the interaction controller of the drawing canvas. It
// owns the scene and the render pipeline, turns pointer events into scene
// mutations and coalesces them into one paint per animation frame.
package editor

import (
	"math"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/render"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// Options configures an Editor and the surfaces a host creates for it.
type Options struct {
	Width        int        // canvas width in pixels
	Height       int        // canvas height in pixels
	Tolerance    float64    // vertex selection tolerance in pixels
	HitLineWidth float64    // width of lines on the hit surface
	RotationStep float64    // degrees per frame for animated shapes
	Background   geom.Color // visible clear color
}

// DefaultOptions returns the options used when a host has no configuration.
func DefaultOptions() Options {
	return Options{
		Width:        800,
		Height:       600,
		Tolerance:    10,
		HitLineWidth: 5,
		RotationStep: 1,
		Background:   geom.White,
	}
}

// Mode is the active tool.
type Mode string

const (
	ModeCursor        Mode = "cursor"
	ModeSquare        Mode = "square"
	ModeRectangle     Mode = "rectangle"
	ModeLine          Mode = "line"
	ModePolygon       Mode = "polygon"
	ModePolygonPoints Mode = "polygon-points"
)

// Kind returns the shape kind a creation mode draws.
func (m Mode) Kind() (shape.Kind, bool) {
	switch m {
	case ModeSquare, ModeRectangle, ModeLine, ModePolygon:
		return shape.Kind(m), true
	}
	return "", false
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, create := m.Kind()
	return create || m == ModeCursor || m == ModePolygonPoints
}

// Editor is single-threaded: every method must be called from the host's
// event loop.
type Editor struct {
	opts     Options
	scene    *scene.Scene
	renderer *render.Renderer

	mode    Mode
	gesture gesture
	points  []geom.Point // pending polygon-points clicks

	frame *render.Frame
	dirty bool
}

// New creates an editor drawing onto the given surfaces.
func New(visible, hit render.Surface, opts Options) (*Editor, error) {
	r, err := render.NewRenderer(visible, hit, render.Options{
		Tolerance:  opts.Tolerance,
		Background: opts.Background,
	})
	if err != nil {
		return nil, err
	}
	return &Editor{
		opts:     opts,
		scene:    scene.New(),
		renderer: r,
		mode:     ModeCursor,
		dirty:    true,
	}, nil
}

// NewRaster creates an editor over two software surfaces of the configured
// size, for hosts without a GPU canvas.
func NewRaster(opts Options) (*Editor, *render.Raster, error) {
	visible, err := render.NewRaster(opts.Width, opts.Height, 1)
	if err != nil {
		return nil, nil, err
	}
	hit, err := render.NewRaster(opts.Width, opts.Height, opts.HitLineWidth)
	if err != nil {
		return nil, nil, err
	}
	e, err := New(visible, hit, opts)
	if err != nil {
		return nil, nil, err
	}
	return e, visible, nil
}

// Scene returns the edited scene. Callers that mutate it must call
// Invalidate.
func (e *Editor) Scene() *scene.Scene { return e.scene }

// Options returns the editor options.
func (e *Editor) Options() Options { return e.opts }

// Mode returns the active tool.
func (e *Editor) Mode() Mode { return e.mode }

// SetMode switches tools. Any gesture in progress ends and pending polygon
// points are dropped.
func (e *Editor) SetMode(m Mode) bool {
	if !m.Valid() {
		return false
	}
	e.gesture = nil
	if len(e.points) > 0 {
		e.points = nil
		e.dirty = true
	}
	e.mode = m
	return true
}

// Invalidate schedules a repaint on the next Tick.
func (e *Editor) Invalidate() { e.dirty = true }

// Dirty reports whether a repaint is pending.
func (e *Editor) Dirty() bool { return e.dirty }

// Tick is called once per animation frame. It advances animated rotations
// and repaints if anything changed since the last frame. It reports whether
// a new frame was drawn.
func (e *Editor) Tick() bool {
	for _, s := range e.scene.Shapes() {
		if s.AnimateRotation() {
			s.SetAngle(s.Angle() + e.opts.RotationStep)
			e.dirty = true
		}
	}
	return e.flush()
}

// Render repaints unconditionally and returns the frame.
func (e *Editor) Render() *render.Frame {
	e.dirty = true
	e.flush()
	return e.frame
}

// Frame returns the last drawn frame, or nil before the first Tick.
func (e *Editor) Frame() *render.Frame { return e.frame }

// flush repaints if dirty.
func (e *Editor) flush() bool {
	if !e.dirty {
		return false
	}
	e.frame = e.renderer.Render(e.scene)
	e.dirty = false
	return true
}

// Pick returns what is under (x, y) on the hit surface as of the current
// scene state.
func (e *Editor) Pick(x, y float64) render.Pick {
	e.flush()
	return e.renderer.Pick(int(math.Floor(x)), int(math.Floor(y)))
}

// PendingPoints returns the polygon-points clicks collected so far.
func (e *Editor) PendingPoints() []geom.Point {
	return append([]geom.Point(nil), e.points...)
}

// FinishPolygon turns the pending clicks into a polygon over their convex
// hull. Nothing is created when the hull is degenerate.
func (e *Editor) FinishPolygon() (*shape.Polygon, bool) {
	pts := e.points
	e.points = nil
	e.dirty = true
	return e.scene.CreatePolygonFromPoints(pts)
}

// ToConvexHull reduces the selected polygon to the convex hull of its
// vertices.
func (e *Editor) ToConvexHull() bool {
	p, ok := e.scene.Selected().(*shape.Polygon)
	if !ok || !p.ToConvexHull() {
		return false
	}
	e.dirty = true
	return true
}
