package shape

import "github.com/webcad/webcad/backend-go/internal/geom"

// Rectangle is a Width x Height box centered on its position.
type Rectangle struct {
	base
}

// NewRectangle returns a zero-sized rectangle at the origin.
func NewRectangle(id int, d Defaults) *Rectangle {
	r := &Rectangle{}
	r.base = newBase(id, KindRectangle, d.Color, func() []geom.Point {
		return boxCorners(r.width, r.height)
	})
	r.recompute()
	return r
}

func (r *Rectangle) Primitive() Primitive { return TriangleStrip }

func (r *Rectangle) MoveVertex(px, py, tolerance, dx, dy float64) {
	if i, ok := r.HitTestVertex(px, py, tolerance); ok {
		r.MoveVertexIndex(i, dx, dy)
	}
}

// MoveVertexIndex adjusts width and height independently so corner i
// follows the drag and the opposite corner stays anchored.
func (r *Rectangle) MoveVertexIndex(i int, dx, dy float64) {
	if i < 0 || i >= len(cornerSigns) {
		return
	}
	r.dragExtents(geom.Pt(cornerSigns[i][0], cornerSigns[i][1]), dx, dy)
}

func (r *Rectangle) Attributes() []Attribute {
	return append([]Attribute{
		numberAttr("rect-width", "Width", r.width, r.SetWidth),
		numberAttr("rect-height", "Height", r.height, r.SetHeight),
		numberAttr("rect-angle", "Angle", r.angle, r.SetAngle),
	}, commonAttributes(r)...)
}

func (r *Rectangle) VertexAttributes(px, py, tolerance float64) []Attribute {
	return vertexAttributes(r, px, py, tolerance)
}

var _ Shape = (*Rectangle)(nil)
