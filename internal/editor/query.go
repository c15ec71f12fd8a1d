package editor

import (
	"encoding/json"

	"github.com/webcad/webcad/backend-go/internal/document"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// Selection is the sidebar view of the selected shape.
type Selection struct {
	Shape      *document.Record  `json:"shape"`
	Attributes []shape.Attribute `json:"attributes"`
}

// Selection returns the selected shape and its attributes.
func (e *Editor) Selection() Selection {
	s := e.scene.Selected()
	if s == nil {
		return Selection{Attributes: []shape.Attribute{}}
	}
	r := document.NewRecord(s)
	return Selection{Shape: &r, Attributes: s.Attributes()}
}

// FrameJSON returns the last frame as JSON.
func (e *Editor) FrameJSON() string {
	if e.frame == nil {
		return "{}"
	}
	s, _ := e.frame.JSON()
	return s
}

// SelectionJSON returns Selection as JSON.
func (e *Editor) SelectionJSON() string {
	return marshal(e.Selection(), "{}")
}

// VertexAttributesJSON returns VertexAttributes as JSON.
func (e *Editor) VertexAttributesJSON(x, y float64) string {
	return marshal(nonNil(e.VertexAttributes(x, y)), "[]")
}

// CreateAttributesJSON returns CreateAttributes as JSON.
func (e *Editor) CreateAttributesJSON(kind shape.Kind) string {
	return marshal(nonNil(e.CreateAttributes(kind)), "[]")
}

// StateJSON returns the editor state a toolbar needs.
func (e *Editor) StateJSON() string {
	return marshal(map[string]any{
		"mode":          e.mode,
		"selectedId":    e.scene.SelectedID(),
		"shapes":        e.scene.Len(),
		"nextId":        e.scene.NextID(),
		"dragging":      e.Dragging(),
		"pendingPoints": len(e.points),
	}, "{}")
}

func nonNil(attrs []shape.Attribute) []shape.Attribute {
	if attrs == nil {
		return []shape.Attribute{}
	}
	return attrs
}

func marshal(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}
