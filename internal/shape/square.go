package shape

import "github.com/webcad/webcad/backend-go/internal/geom"

// Square is a square of side Width centered on its position. Height always
// equals Width.
type Square struct {
	base
}

// NewSquare returns a zero-sized square at the origin.
func NewSquare(id int, d Defaults) *Square {
	s := &Square{}
	s.base = newBase(id, KindSquare, d.Color, func() []geom.Point {
		return boxCorners(s.width, s.width)
	})
	s.recompute()
	return s
}

func (s *Square) Height() float64 { return s.width }

// SetWidth sets the side length.
func (s *Square) SetWidth(w float64) {
	s.width = w
	s.height = w
	s.recompute()
}

// SetHeight also sets the side length.
func (s *Square) SetHeight(h float64) { s.SetWidth(h) }

func (s *Square) Primitive() Primitive { return TriangleStrip }

func (s *Square) MoveVertex(px, py, tolerance, dx, dy float64) {
	if i, ok := s.HitTestVertex(px, py, tolerance); ok {
		s.MoveVertexIndex(i, dx, dy)
	}
}

// MoveVertexIndex projects the drag onto the diagonal through corner i, so
// the square grows or shrinks along that diagonal with the opposite corner
// fixed.
func (s *Square) MoveVertexIndex(i int, dx, dy float64) {
	if i < 0 || i >= len(cornerSigns) {
		return
	}
	sign := cornerSigns[i]
	d := geom.RotatePoint(geom.Pt(dx, dy), -s.angle)
	// Component of the drag along the unit diagonal, split per axis.
	along := (d.X*sign[0] + d.Y*sign[1]) / 2

	shift := geom.RotatePoint(geom.Pt(sign[0]*along/2, sign[1]*along/2), s.angle)
	s.width += along
	s.height = s.width
	s.SetPosition(s.pos.X+shift.X, s.pos.Y+shift.Y)
}

func (s *Square) Attributes() []Attribute {
	return append([]Attribute{
		numberAttr("square-width", "Width", s.width, s.SetWidth),
		numberAttr("square-angle", "Angle", s.angle, s.SetAngle),
	}, commonAttributes(s)...)
}

func (s *Square) VertexAttributes(px, py, tolerance float64) []Attribute {
	return vertexAttributes(s, px, py, tolerance)
}

var _ Shape = (*Square)(nil)

