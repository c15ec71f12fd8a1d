package shape

import "github.com/webcad/webcad/backend-go/internal/geom"

// Line is the diagonal of a Width x Height box centered on its position.
// Width and height may be negative, which flips the diagonal.
type Line struct {
	base
}

// lineSigns is the sign of each endpoint relative to the half extents.
var lineSigns = [2][2]float64{{-1, -1}, {1, 1}}

// NewLine returns a zero-length line at the origin.
func NewLine(id int, d Defaults) *Line {
	l := &Line{}
	l.base = newBase(id, KindLine, d.Color, func() []geom.Point {
		return []geom.Point{
			geom.Pt(lineSigns[0][0]*l.width/2, lineSigns[0][1]*l.height/2),
			geom.Pt(lineSigns[1][0]*l.width/2, lineSigns[1][1]*l.height/2),
		}
	})
	l.recompute()
	return l
}

// SetEndpoints places the line between a and b with no rotation.
func (l *Line) SetEndpoints(a, b geom.Point) {
	l.width = b.X - a.X
	l.height = b.Y - a.Y
	l.angle = 0
	l.SetPosition((a.X+b.X)/2, (a.Y+b.Y)/2)
}

func (l *Line) Primitive() Primitive { return Lines }

func (l *Line) MoveVertex(px, py, tolerance, dx, dy float64) {
	if i, ok := l.HitTestVertex(px, py, tolerance); ok {
		l.MoveVertexIndex(i, dx, dy)
	}
}

// MoveVertexIndex moves endpoint i and keeps the other one fixed.
func (l *Line) MoveVertexIndex(i int, dx, dy float64) {
	if i < 0 || i >= len(lineSigns) {
		return
	}
	l.dragExtents(geom.Pt(lineSigns[i][0], lineSigns[i][1]), dx, dy)
}

func (l *Line) Attributes() []Attribute {
	return append([]Attribute{
		numberAttr("line-width", "Width", l.width, l.SetWidth),
		numberAttr("line-height", "Height", l.height, l.SetHeight),
		numberAttr("line-angle", "Angle", l.angle, l.SetAngle),
	}, commonAttributes(l)...)
}

func (l *Line) VertexAttributes(px, py, tolerance float64) []Attribute {
	return vertexAttributes(l, px, py, tolerance)
}

var _ Shape = (*Line)(nil)
