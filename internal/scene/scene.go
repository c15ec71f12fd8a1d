// Package scene holds the shapes of one drawing, in paint order, along with
// id assignment, selection and the per-kind creation defaults.
package scene

import (
	"errors"
	"fmt"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// ErrDuplicateID is returned when a shape id is already in the scene.
var ErrDuplicateID = errors.New("duplicate shape id")

// Scene is the drawing's shape collection. Insertion order is paint order.
type Scene struct {
	nextID   int
	shapes   []shape.Shape
	selected int // 0 means nothing is selected
	defaults map[shape.Kind]*shape.Defaults
}

// New creates an empty scene whose first shape gets id 1.
func New() *Scene {
	sc := &Scene{
		nextID:   1,
		defaults: make(map[shape.Kind]*shape.Defaults, len(shape.Kinds)),
	}
	for _, k := range shape.Kinds {
		d := shape.DefaultDefaults(k)
		sc.defaults[k] = &d
	}
	return sc
}

// NextID returns the id the next created shape will get.
func (sc *Scene) NextID() int { return sc.nextID }

// Len returns the number of shapes.
func (sc *Scene) Len() int { return len(sc.shapes) }

// Shapes returns the shapes in paint order. The slice must not be modified.
func (sc *Scene) Shapes() []shape.Shape { return sc.shapes }

// Defaults returns the creation defaults for kind.
func (sc *Scene) Defaults(kind shape.Kind) shape.Defaults {
	if d, ok := sc.defaults[kind]; ok {
		return *d
	}
	return shape.DefaultDefaults(kind)
}

// SetDefaults replaces the creation defaults for kind.
func (sc *Scene) SetDefaults(kind shape.Kind, d shape.Defaults) {
	if cur, ok := sc.defaults[kind]; ok {
		*cur = d
	}
}

// EditDefaults returns the live creation defaults for kind, or nil for an
// unknown kind.
func (sc *Scene) EditDefaults(kind shape.Kind) *shape.Defaults {
	return sc.defaults[kind]
}

// CreateShape allocates the next id, builds a zero-sized shape of kind at
// pos with the kind's defaults and appends it.
func (sc *Scene) CreateShape(kind shape.Kind, pos geom.Point) (shape.Shape, error) {
	s, err := shape.New(kind, sc.nextID, sc.Defaults(kind))
	if err != nil {
		return nil, err
	}
	sc.nextID++
	s.SetPosition(pos.X, pos.Y)
	sc.shapes = append(sc.shapes, s)
	return s, nil
}

// CreatePolygonFromPoints appends a polygon built from the convex hull of
// pts. It reports false, consuming no id, when the hull is degenerate.
func (sc *Scene) CreatePolygonFromPoints(pts []geom.Point) (*shape.Polygon, bool) {
	p, ok := shape.NewPolygonFromPoints(sc.nextID, sc.Defaults(shape.KindPolygon), pts)
	if !ok {
		return nil, false
	}
	sc.nextID++
	sc.shapes = append(sc.shapes, p)
	return p, true
}

// AddExisting appends a shape that already has an id, keeping nextID ahead
// of it.
func (sc *Scene) AddExisting(s shape.Shape) error {
	if sc.FindByID(s.ID()) != nil {
		return fmt.Errorf("%w: %d", ErrDuplicateID, s.ID())
	}
	sc.shapes = append(sc.shapes, s)
	sc.nextID = max(sc.nextID, s.ID()+1)
	return nil
}

// Replace swaps in a whole new shape list, as a load does. nextID becomes
// max(id)+1 and the selection is cleared. On error the scene is untouched.
func (sc *Scene) Replace(shapes []shape.Shape) error {
	seen := make(map[int]bool, len(shapes))
	next := 1
	for _, s := range shapes {
		if s.ID() <= 0 {
			return fmt.Errorf("invalid shape id %d", s.ID())
		}
		if seen[s.ID()] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, s.ID())
		}
		seen[s.ID()] = true
		next = max(next, s.ID()+1)
	}
	sc.shapes = append([]shape.Shape(nil), shapes...)
	sc.nextID = next
	sc.selected = 0
	return nil
}

// Select sets the selected shape id; 0 clears the selection.
func (sc *Scene) Select(id int) {
	sc.selected = id
}

// SelectedID returns the selected id, or 0.
func (sc *Scene) SelectedID() int { return sc.selected }

// Selected returns the selected shape, or nil.
func (sc *Scene) Selected() shape.Shape {
	if sc.selected == 0 {
		return nil
	}
	return sc.FindByID(sc.selected)
}

// FindByID returns the shape with the given id, or nil.
func (sc *Scene) FindByID(id int) shape.Shape {
	for _, s := range sc.shapes {
		if s.ID() == id {
			return s
		}
	}
	return nil
}
