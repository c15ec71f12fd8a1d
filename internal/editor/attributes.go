package editor

import (
	"fmt"
	"log/slog"

	"github.com/webcad/webcad/backend-go/internal/shape"
)

// Attributes describes the selected shape, or nil with no selection.
func (e *Editor) Attributes() []shape.Attribute {
	s := e.scene.Selected()
	if s == nil {
		return nil
	}
	return s.Attributes()
}

// SetAttribute applies raw to an attribute of the selected shape. Invalid
// input leaves the shape unchanged.
func (e *Editor) SetAttribute(id, raw string) error {
	return e.apply(e.Attributes(), id, raw)
}

// VertexAttributes describes the vertex of the selected shape under (x, y).
func (e *Editor) VertexAttributes(x, y float64) []shape.Attribute {
	s := e.scene.Selected()
	if s == nil {
		return nil
	}
	return s.VertexAttributes(x, y, e.opts.Tolerance)
}

// SetVertexAttribute applies raw to an attribute of the vertex under (x, y).
func (e *Editor) SetVertexAttribute(x, y float64, id, raw string) error {
	return e.apply(e.VertexAttributes(x, y), id, raw)
}

// CreateAttributes describes the creation defaults of kind.
func (e *Editor) CreateAttributes(kind shape.Kind) []shape.Attribute {
	d := e.scene.EditDefaults(kind)
	if d == nil {
		return nil
	}
	return shape.CreateAttributes(kind, d)
}

// SetCreateAttribute edits a creation default of kind.
func (e *Editor) SetCreateAttribute(kind shape.Kind, id, raw string) error {
	return e.apply(e.CreateAttributes(kind), id, raw)
}

func (e *Editor) apply(attrs []shape.Attribute, id, raw string) error {
	a, ok := shape.FindAttribute(attrs, id)
	if !ok {
		return fmt.Errorf("%w: no attribute %q", shape.ErrInvalidInput, id)
	}
	if err := a.Set(raw); err != nil {
		slog.Debug("attribute rejected", "attribute", id, "value", raw, "error", err)
		return err
	}
	e.dirty = true
	return nil
}
