package editor

import (
	"log/slog"
	"math"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/render"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// gesture holds pointer focus from press to release.
type gesture interface {
	move(p geom.Point)
}

// PointerDown handles a press at canvas pixel (x, y), origin lower-left.
func (e *Editor) PointerDown(x, y float64) {
	p := geom.Pt(x, y)
	e.gesture = nil

	if kind, ok := e.mode.Kind(); ok {
		s, err := e.scene.CreateShape(kind, p)
		if err != nil {
			slog.Debug("create shape failed", "kind", kind, "error", err)
			return
		}
		e.gesture = &createGesture{shape: s, start: p}
		e.dirty = true
		return
	}

	switch e.mode {
	case ModePolygonPoints:
		e.points = append(e.points, p)
		e.dirty = true
	case ModeCursor:
		e.pressCursor(p)
	}
}

// PointerMove handles pointer motion; it only has an effect during a gesture.
func (e *Editor) PointerMove(x, y float64) {
	if e.gesture == nil {
		return
	}
	e.gesture.move(geom.Pt(x, y))
	e.dirty = true
}

// PointerUp ends the current gesture.
func (e *Editor) PointerUp(x, y float64) {
	if e.gesture == nil {
		return
	}
	e.gesture.move(geom.Pt(x, y))
	e.gesture = nil
	e.dirty = true
}

// Dragging reports whether a gesture holds pointer focus.
func (e *Editor) Dragging() bool { return e.gesture != nil }

func (e *Editor) pressCursor(p geom.Point) {
	pick := e.Pick(p.X, p.Y)
	prev := e.scene.SelectedID()
	e.scene.Select(pick.ShapeID)
	if pick.ShapeID != prev {
		e.dirty = true
	}
	if !pick.Hit() {
		return
	}
	s := e.scene.FindByID(pick.ShapeID)
	if s == nil {
		return
	}
	if pick.Region == render.RegionHandle {
		if i, ok := handleAt(s, p, e.opts.Tolerance); ok {
			e.gesture = &vertexGesture{shape: s, index: i, last: p}
			return
		}
	}
	e.gesture = &translateGesture{shape: s, last: p}
}

// handleAt returns the vertex whose handle, an axis-aligned pixel square of
// half-size tolerance, lies nearest p. One pixel of slack covers the
// rasterized edge; ties go to the later vertex, whose handle is drawn on top.
func handleAt(s shape.Shape, p geom.Point, tolerance float64) (int, bool) {
	best, bestDist := -1, tolerance+1
	for i, v := range s.Vertices() {
		if d := max(math.Abs(v.X-p.X), math.Abs(v.Y-p.Y)); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// createGesture sizes a new shape from the press point to the pointer.
type createGesture struct {
	shape shape.Shape
	start geom.Point
}

func (g *createGesture) move(p geom.Point) {
	d := p.Sub(g.start)
	sx, sy := direction(d.X), direction(d.Y)
	ax, ay := math.Abs(d.X), math.Abs(d.Y)

	switch s := g.shape.(type) {
	case *shape.Line:
		s.SetEndpoints(g.start, p)
	case *shape.Square:
		w := max(ax, ay)
		s.SetWidth(w)
		s.SetPosition(g.start.X+w/2*sx, g.start.Y+w/2*sy)
	default:
		s.SetWidth(ax)
		s.SetHeight(ay)
		s.SetPosition(g.start.X+ax/2*sx, g.start.Y+ay/2*sy)
	}
}

func direction(d float64) float64 {
	if d > 0 {
		return 1
	}
	return -1
}

// translateGesture drags a whole shape.
type translateGesture struct {
	shape shape.Shape
	last  geom.Point
}

func (g *translateGesture) move(p geom.Point) {
	d := p.Sub(g.last)
	g.shape.Translate(d.X, d.Y)
	g.last = p
}

// vertexGesture drags the vertex whose handle was pressed.
type vertexGesture struct {
	shape shape.Shape
	index int
	last  geom.Point
}

func (g *vertexGesture) move(p geom.Point) {
	d := p.Sub(g.last)
	g.shape.MoveVertexIndex(g.index, d.X, d.Y)
	g.last = p
}
