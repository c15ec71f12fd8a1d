package shape

import (
	"fmt"

	"github.com/webcad/webcad/backend-go/internal/geom"
)

// New constructs a zero-sized shape of the given kind.
func New(kind Kind, id int, d Defaults) (Shape, error) {
	switch kind {
	case KindSquare:
		return NewSquare(id, d), nil
	case KindRectangle:
		return NewRectangle(id, d), nil
	case KindLine:
		return NewLine(id, d), nil
	case KindPolygon:
		return NewPolygon(id, d), nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", kind)
	}
}

// State is the flat, authoritative description of a shape. Vertices are
// not part of it; they are rebuilt on Restore.
type State struct {
	ID              int
	Kind            Kind
	Position        geom.Point
	Width           float64
	Height          float64
	Angle           float64
	Sides           int
	Outline         []geom.Point
	Colors          []geom.Color
	AnimateRotation bool
	LockRatio       bool
}

// Snapshot captures the state of s.
func Snapshot(s Shape) State {
	st := State{
		ID:              s.ID(),
		Kind:            s.Kind(),
		Position:        s.Position(),
		Width:           s.Width(),
		Height:          s.Height(),
		Angle:           s.Angle(),
		Colors:          s.VertexColors(),
		AnimateRotation: s.AnimateRotation(),
	}
	if p, ok := s.(*Polygon); ok {
		st.Sides = p.Sides()
		st.Outline = p.Outline()
		st.LockRatio = p.LockRatio()
	}
	return st
}

// Restore rebuilds a shape from st. The color list must match the vertex
// count the description produces.
func Restore(st State) (Shape, error) {
	d := DefaultDefaults(st.Kind)
	if len(st.Colors) > 0 {
		d.Color = st.Colors[0]
	}

	var s Shape
	var b *base
	switch st.Kind {
	case KindSquare:
		sq := NewSquare(st.ID, d)
		sq.height = st.Width
		s, b = sq, &sq.base
	case KindRectangle:
		r := NewRectangle(st.ID, d)
		r.height = st.Height
		s, b = r, &r.base
	case KindLine:
		l := NewLine(st.ID, d)
		l.height = st.Height
		s, b = l, &l.base
	case KindPolygon:
		p := NewPolygon(st.ID, d)
		switch {
		case st.Outline != nil:
			if len(st.Outline) < MinSides {
				return nil, fmt.Errorf("polygon %d: outline has %d points", st.ID, len(st.Outline))
			}
			p.outline = append([]geom.Point(nil), st.Outline...)
			p.sides = len(st.Outline)
		case st.Sides >= MinSides:
			p.sides = st.Sides
		default:
			return nil, fmt.Errorf("polygon %d: %d sides", st.ID, st.Sides)
		}
		p.lockRatio = st.LockRatio
		p.height = st.Height
		s, b = p, &p.base
	default:
		return nil, fmt.Errorf("unknown shape kind %q", st.Kind)
	}

	b.width = st.Width
	b.angle = geom.NormalizeAngle(st.Angle)
	b.animate = st.AnimateRotation
	b.SetPosition(st.Position.X, st.Position.Y)
	if st.Colors != nil {
		if err := b.setColors(st.Colors); err != nil {
			return nil, fmt.Errorf("%s %d: %w", st.Kind, st.ID, err)
		}
	}
	return s, nil
}
