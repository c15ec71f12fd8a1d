package shape

import (
	"math"

	"github.com/webcad/webcad/backend-go/internal/geom"
)

// Polygon places Sides vertices on the ellipse inscribed in its Width x
// Height box, evenly spaced starting at angle 0. A polygon built from clicked
// points (or reduced with ToConvexHull) keeps an outline instead: offsets
// relative to the half extents, so the usual setters still scale, move and
// rotate it.
type Polygon struct {
	base
	sides     int
	outline   []geom.Point
	lockRatio bool
}

// NewPolygon returns a zero-sized regular polygon with d.Sides vertices.
func NewPolygon(id int, d Defaults) *Polygon {
	p := &Polygon{sides: max(d.Sides, MinSides)}
	p.base = newBase(id, KindPolygon, d.Color, p.localVertices)
	p.recompute()
	return p
}

// NewPolygonFromPoints builds a polygon from the convex hull of pts, which
// are in pixel space. It reports false when the hull is degenerate.
func NewPolygonFromPoints(id int, d Defaults, pts []geom.Point) (*Polygon, bool) {
	hull := geom.ConvexHull(pts)
	if hull == nil {
		return nil, false
	}
	box := geom.Bounds(hull)
	if box.Width == 0 || box.Height == 0 {
		return nil, false
	}
	c := box.Center()
	outline := make([]geom.Point, len(hull))
	for i, h := range hull {
		outline[i] = geom.Pt((h.X-c.X)/(box.Width/2), (h.Y-c.Y)/(box.Height/2))
	}

	p := NewPolygon(id, d)
	p.outline = outline
	p.sides = len(outline)
	p.width = box.Width
	p.height = box.Height
	p.SetPosition(c.X, c.Y)
	return p, true
}

// localVertices returns the unit offsets scaled by the half extents.
func (p *Polygon) localVertices() []geom.Point {
	units := p.units()
	out := make([]geom.Point, len(units))
	for i, u := range units {
		out[i] = geom.Pt(u.X*p.width/2, u.Y*p.height/2)
	}
	return out
}

// units returns each vertex as a multiple of (width/2, height/2).
func (p *Polygon) units() []geom.Point {
	if p.outline != nil {
		return p.outline
	}
	out := make([]geom.Point, p.sides)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / float64(p.sides)
		out[i] = geom.Pt(math.Cos(theta), math.Sin(theta))
	}
	return out
}

func (p *Polygon) Sides() int { return p.sides }

// SetSides changes the vertex count, returning a free-form polygon to the
// regular layout. Growing appends vertices in the shape's fill color, which
// is the creation color until SetAllVertexColors recolors the whole shape;
// shrinking drops vertices from the end. Counts below MinSides are ignored.
func (p *Polygon) SetSides(n int) {
	if n < MinSides {
		return
	}
	p.outline = nil
	p.sides = n
	p.recompute()
}

// Outline returns the free-form outline, or nil for a regular polygon.
func (p *Polygon) Outline() []geom.Point {
	if p.outline == nil {
		return nil
	}
	out := make([]geom.Point, len(p.outline))
	copy(out, p.outline)
	return out
}

func (p *Polygon) LockRatio() bool { return p.lockRatio }

func (p *Polygon) SetLockRatio(on bool) { p.lockRatio = on }

// SetWidth sets the width, scaling the height too when the ratio is locked.
func (p *Polygon) SetWidth(w float64) {
	if p.lockRatio && p.width != 0 {
		p.height = w * p.height / p.width
	}
	p.base.SetWidth(w)
}

// SetHeight sets the height, scaling the width too when the ratio is locked.
func (p *Polygon) SetHeight(h float64) {
	if p.lockRatio && p.height != 0 {
		p.width = h * p.width / p.height
	}
	p.base.SetHeight(h)
}

func (p *Polygon) Primitive() Primitive { return TriangleFan }

func (p *Polygon) MoveVertex(px, py, tolerance, dx, dy float64) {
	if i, ok := p.HitTestVertex(px, py, tolerance); ok {
		p.MoveVertexIndex(i, dx, dy)
	}
}

// MoveVertexIndex rescales width and height so vertex i follows the drag
// while the box edges on the far side of the center stay in place. A vertex
// near the center line grows its axis by at most twice the drag.
func (p *Polygon) MoveVertexIndex(i int, dx, dy float64) {
	units := p.units()
	if i < 0 || i >= len(units) {
		return
	}
	p.dragExtents(units[i], dx, dy)
}

// ToConvexHull replaces the vertices with their convex hull in perimeter
// order, carrying each surviving vertex's color. It reports false, leaving
// the polygon unchanged, when the hull is degenerate.
func (p *Polygon) ToConvexHull() bool {
	if p.width == 0 || p.height == 0 {
		return false
	}
	local := p.localVertices()
	hull := geom.ConvexHull(local)
	if hull == nil {
		return false
	}

	colors := make([]geom.Color, len(hull))
	outline := make([]geom.Point, len(hull))
	for i, h := range hull {
		outline[i] = geom.Pt(h.X/(p.width/2), h.Y/(p.height/2))
		colors[i] = p.fill
		for j, v := range local {
			if v == h {
				colors[i] = p.colors[j]
				break
			}
		}
	}
	p.outline = outline
	p.sides = len(outline)
	p.colors = colors
	p.recompute()
	return true
}

func (p *Polygon) Attributes() []Attribute {
	return append([]Attribute{
		sidesAttr("poly-sides", "Sides", p.sides, p.SetSides),
		numberAttr("poly-width", "Width", p.width, p.SetWidth),
		numberAttr("poly-height", "Height", p.height, p.SetHeight),
		checkboxAttr("poly-lock", "Lock ratio", p.lockRatio, p.SetLockRatio),
		numberAttr("poly-angle", "Angle", p.angle, p.SetAngle),
	}, commonAttributes(p)...)
}

func (p *Polygon) VertexAttributes(px, py, tolerance float64) []Attribute {
	return vertexAttributes(p, px, py, tolerance)
}

var (
	_ Shape = (*Polygon)(nil)
	_ Sided = (*Polygon)(nil)
)
