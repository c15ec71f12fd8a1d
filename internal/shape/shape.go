// Package shape implements the drawable shapes of a drawing. Every shape is
// described by a reference position, extents and an angle; its vertices are
// derived from that description and rebuilt by every setter.
package shape

import (
	"fmt"
	"math"

	"github.com/webcad/webcad/backend-go/internal/geom"
)

// Kind identifies a concrete shape variant.
type Kind string

const (
	KindSquare    Kind = "square"
	KindRectangle Kind = "rectangle"
	KindLine      Kind = "line"
	KindPolygon   Kind = "polygon"
)

// Kinds lists every variant in toolbar order.
var Kinds = []Kind{KindSquare, KindRectangle, KindLine, KindPolygon}

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	switch k {
	case KindSquare, KindRectangle, KindLine, KindPolygon:
		return true
	}
	return false
}

// Primitive is the primitive assembly used to paint a vertex run.
type Primitive int

const (
	TriangleStrip Primitive = iota
	TriangleFan
	Lines
)

func (p Primitive) String() string {
	switch p {
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	case Lines:
		return "lines"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

func (p Primitive) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Primitive) UnmarshalText(text []byte) error {
	for _, q := range []Primitive{TriangleStrip, TriangleFan, Lines} {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown primitive %q", text)
}

// MinSides is the smallest polygon side count.
const MinSides = 3

// Defaults is the per-kind configuration applied to newly created shapes.
type Defaults struct {
	Color geom.Color
	Sides int
}

// DefaultDefaults returns the initial creation defaults for kind.
func DefaultDefaults(kind Kind) Defaults {
	d := Defaults{Color: geom.Black}
	if kind == KindPolygon {
		d.Sides = MinSides
	}
	return d
}

// Shape is implemented by every variant.
type Shape interface {
	ID() int
	Kind() Kind

	Position() geom.Point
	Width() float64
	Height() float64
	Angle() float64

	SetPosition(x, y float64)
	SetWidth(w float64)
	SetHeight(h float64)
	SetAngle(deg float64)
	Translate(dx, dy float64)

	// Vertices returns the pixel-space vertices in the variant's order.
	Vertices() []geom.Point
	VertexColors() []geom.Color
	SetVertexColor(i int, c geom.Color) error
	SetAllVertexColors(hex string) error

	// DeviceVertices maps the vertices into [-1,1] device space for a canvas
	// of the given size. It is never cached.
	DeviceVertices(canvasWidth, canvasHeight float64) []float32
	// DeviceColors returns the vertex colors as 0..1 RGBA floats.
	DeviceColors() []float32
	Primitive() Primitive

	// HitTestVertex returns the index of the first vertex within tolerance
	// pixels of (px, py) on both axes of the shape's unrotated frame.
	HitTestVertex(px, py, tolerance float64) (int, bool)
	// MoveVertex drags the vertex under (px, py) by (dx, dy), keeping the
	// opposite side anchored. It does nothing when no vertex is there.
	MoveVertex(px, py, tolerance, dx, dy float64)
	// MoveVertexIndex drags vertex i by (dx, dy) like MoveVertex. Indexes
	// out of range are ignored.
	MoveVertexIndex(i int, dx, dy float64)

	AnimateRotation() bool
	SetAnimateRotation(on bool)

	// Attributes describes the editable properties of the shape.
	Attributes() []Attribute
	// VertexAttributes describes the vertex under (px, py), if any.
	VertexAttributes(px, py, tolerance float64) []Attribute
}

// Sided is implemented by shapes with a variable vertex count.
type Sided interface {
	Sides() int
	SetSides(n int)
}

// base holds the state shared by every variant. local returns the vertices
// in the unrotated frame centered on position; base places them.
type base struct {
	id      int
	kind    Kind
	pos     geom.Point
	width   float64
	height  float64
	angle   float64
	animate bool

	fill     geom.Color
	vertices []geom.Point
	colors   []geom.Color

	local func() []geom.Point
}

func newBase(id int, kind Kind, fill geom.Color, local func() []geom.Point) base {
	return base{id: id, kind: kind, fill: fill, local: local}
}

func (b *base) ID() int               { return b.id }
func (b *base) Kind() Kind            { return b.kind }
func (b *base) Position() geom.Point  { return b.pos }
func (b *base) Width() float64        { return b.width }
func (b *base) Height() float64       { return b.height }
func (b *base) Angle() float64        { return b.angle }
func (b *base) AnimateRotation() bool { return b.animate }

func (b *base) SetAnimateRotation(on bool) { b.animate = on }

// Always use the setters; they rebuild the vertices.

func (b *base) SetPosition(x, y float64) {
	b.pos = geom.Pt(x, y)
	b.recompute()
}

func (b *base) SetWidth(w float64) {
	b.width = w
	b.recompute()
}

func (b *base) SetHeight(h float64) {
	b.height = h
	b.recompute()
}

func (b *base) SetAngle(deg float64) {
	b.angle = geom.NormalizeAngle(deg)
	b.recompute()
}

func (b *base) Translate(dx, dy float64) {
	b.SetPosition(b.pos.X+dx, b.pos.Y+dy)
}

// recompute rebuilds vertices from position, extents and angle, and resizes
// the color list to match.
func (b *base) recompute() {
	pts := b.local()
	if cap(b.vertices) < len(pts) {
		b.vertices = make([]geom.Point, len(pts))
	}
	b.vertices = b.vertices[:len(pts)]
	for i, p := range pts {
		x, y := geom.Rotate(p.X, p.Y, b.angle)
		b.vertices[i] = geom.Pt(x+b.pos.X, y+b.pos.Y)
	}
	b.resizeColors(len(pts))
}

// resizeColors truncates from the end or appends fill-colored entries.
func (b *base) resizeColors(n int) {
	if len(b.colors) > n {
		b.colors = b.colors[:n]
		return
	}
	for len(b.colors) < n {
		b.colors = append(b.colors, b.fill)
	}
}

func (b *base) Vertices() []geom.Point {
	out := make([]geom.Point, len(b.vertices))
	copy(out, b.vertices)
	return out
}

func (b *base) VertexColors() []geom.Color {
	out := make([]geom.Color, len(b.colors))
	copy(out, b.colors)
	return out
}

func (b *base) SetVertexColor(i int, c geom.Color) error {
	if i < 0 || i >= len(b.colors) {
		return fmt.Errorf("vertex %d out of range [0,%d)", i, len(b.colors))
	}
	b.colors[i] = c
	return nil
}

func (b *base) SetAllVertexColors(hex string) error {
	c, err := geom.HexToColor(hex)
	if err != nil {
		return err
	}
	b.fill = c
	for i := range b.colors {
		b.colors[i] = c
	}
	return nil
}

// setColors replaces the color list, used when restoring a saved shape.
func (b *base) setColors(colors []geom.Color) error {
	if len(colors) != len(b.vertices) {
		return fmt.Errorf("got %d colors for %d vertices", len(colors), len(b.vertices))
	}
	copy(b.colors, colors)
	return nil
}

func (b *base) DeviceVertices(canvasWidth, canvasHeight float64) []float32 {
	m := geom.DeviceTransform(canvasWidth, canvasHeight)
	out := make([]float32, 0, 2*len(b.vertices))
	for _, v := range b.vertices {
		p := m.Apply(v)
		out = append(out, float32(p.X), float32(p.Y))
	}
	return out
}

func (b *base) DeviceColors() []float32 {
	out := make([]float32, 0, 4*len(b.colors))
	for _, c := range b.colors {
		n := c.Normalized()
		out = append(out, n[:]...)
	}
	return out
}

// toLocal maps a pixel-space point into the unrotated frame of the shape.
func (b *base) toLocal(px, py float64) geom.Point {
	return geom.LocalFrame(b.pos, b.angle).Apply(geom.Pt(px, py))
}

func (b *base) HitTestVertex(px, py, tolerance float64) (int, bool) {
	q := b.toLocal(px, py)
	for i, p := range b.local() {
		if math.Abs(p.X-q.X) <= tolerance && math.Abs(p.Y-q.Y) <= tolerance {
			return i, true
		}
	}
	return 0, false
}

// dragExtents resizes along the local axes so that a vertex at unit offset u
// (its local position is (u.X*w/2, u.Y*h/2) with each component in [-1, 1])
// moves by the drag while the frame edge on the far side of the center
// stays put. Each extent grows by at most twice the drag.
func (b *base) dragExtents(u geom.Point, dx, dy float64) {
	d := geom.RotatePoint(geom.Pt(dx, dy), -b.angle)
	gx, sx := anchoredGrowth(u.X, d.X)
	gy, sy := anchoredGrowth(u.Y, d.Y)
	b.width += gx
	b.height += gy
	shift := geom.RotatePoint(geom.Pt(sx, sy), b.angle)
	b.SetPosition(b.pos.X+shift.X, b.pos.Y+shift.Y)
}

// anchoredGrowth returns how much one extent grows, and how far its center
// moves, when the vertex at unit offset u is dragged by d with the edge at
// -sign(u) fixed.
func anchoredGrowth(u, d float64) (grow, shift float64) {
	s := 1.0
	if u < 0 {
		s = -1
	}
	grow = 2 * d / (u + s)
	return grow, s * grow / 2
}

// cornerSigns is the (x, y) sign of each box corner in vertex order:
// top-left, top-right, bottom-left, bottom-right.
var cornerSigns = [4][2]float64{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}

// boxCorners returns the four corners of a w x h box in cornerSigns order.
func boxCorners(w, h float64) []geom.Point {
	out := make([]geom.Point, 4)
	for i, s := range cornerSigns {
		out[i] = geom.Pt(s[0]*w/2, s[1]*h/2)
	}
	return out
}
