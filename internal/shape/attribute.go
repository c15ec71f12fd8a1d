package shape

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/webcad/webcad/backend-go/internal/geom"
)

// ErrInvalidInput is returned when an attribute value cannot be parsed. The
// attribute keeps its previous value.
var ErrInvalidInput = errors.New("invalid attribute input")

// InputKind is the form control used to edit an attribute.
type InputKind string

const (
	InputNumber   InputKind = "number"
	InputColor    InputKind = "color"
	InputCheckbox InputKind = "checkbox"
)

// Attribute describes one editable property for a sidebar form. Value is
// the current value formatted for the input kind.
type Attribute struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Input InputKind `json:"inputKind"`
	Value string    `json:"value"`

	set func(raw string) error
}

// Set parses raw and applies it.
func (a Attribute) Set(raw string) error {
	if a.set == nil {
		return fmt.Errorf("attribute %q is read-only", a.ID)
	}
	return a.set(raw)
}

// FindAttribute returns the attribute with the given id.
func FindAttribute(attrs []Attribute, id string) (Attribute, bool) {
	for _, a := range attrs {
		if a.ID == id {
			return a, true
		}
	}
	return Attribute{}, false
}

func numberAttr(id, label string, v float64, apply func(float64)) Attribute {
	return Attribute{
		ID:    id,
		Label: label,
		Input: InputNumber,
		Value: strconv.FormatFloat(v, 'f', -1, 64),
		set: func(raw string) error {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidInput, id, raw)
			}
			apply(f)
			return nil
		},
	}
}

func sidesAttr(id, label string, n int, apply func(int)) Attribute {
	return Attribute{
		ID:    id,
		Label: label,
		Input: InputNumber,
		Value: strconv.Itoa(n),
		set: func(raw string) error {
			v, err := strconv.Atoi(raw)
			if err != nil || v < MinSides {
				return fmt.Errorf("%w: %s=%q", ErrInvalidInput, id, raw)
			}
			apply(v)
			return nil
		},
	}
}

func colorAttr(id, label string, c geom.Color, apply func(geom.Color)) Attribute {
	return Attribute{
		ID:    id,
		Label: label,
		Input: InputColor,
		Value: c.Hex(),
		set: func(raw string) error {
			parsed, err := geom.HexToColor(raw)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			apply(parsed)
			return nil
		},
	}
}

func checkboxAttr(id, label string, on bool, apply func(bool)) Attribute {
	return Attribute{
		ID:    id,
		Label: label,
		Input: InputCheckbox,
		Value: strconv.FormatBool(on),
		set: func(raw string) error {
			if raw == "on" {
				raw = "true"
			}
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidInput, id, raw)
			}
			apply(v)
			return nil
		},
	}
}

// commonAttributes are shared by every variant: whole-shape color and the
// rotation animation toggle.
func commonAttributes(s Shape) []Attribute {
	var current geom.Color
	if colors := s.VertexColors(); len(colors) > 0 {
		current = colors[0]
	}
	return []Attribute{
		colorAttr("color", "Color", current, func(c geom.Color) {
			_ = s.SetAllVertexColors(c.Hex())
		}),
		checkboxAttr("animate-rotation", "Animate Rotation", s.AnimateRotation(), s.SetAnimateRotation),
	}
}

func vertexAttributes(s Shape, px, py, tolerance float64) []Attribute {
	i, ok := s.HitTestVertex(px, py, tolerance)
	if !ok {
		return nil
	}
	return []Attribute{
		colorAttr("vertex-color", "Vertex Color", s.VertexColors()[i], func(c geom.Color) {
			_ = s.SetVertexColor(i, c)
		}),
	}
}

// CreateAttributes describes the creation defaults of kind, editing d.
func CreateAttributes(kind Kind, d *Defaults) []Attribute {
	var attrs []Attribute
	if kind == KindPolygon {
		attrs = append(attrs, sidesAttr("create-sides", "Sides", d.Sides, func(n int) {
			d.Sides = n
		}))
	}
	return append(attrs, colorAttr("create-color", "Color", d.Color, func(c geom.Color) {
		d.Color = c
	}))
}
