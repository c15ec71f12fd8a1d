// Package document is the drawing file format: a JSON array of flat shape
// records, one per shape in paint order.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

var (
	ErrEmpty       = errors.New("empty drawing")
	ErrMalformed   = errors.New("malformed drawing")
	ErrUnknownKind = errors.New("unknown shape kind")
)

type Record struct {
	ID              int          `json:"id"`
	Kind            shape.Kind   `json:"kind"`
	Position        geom.Point   `json:"position"`
	Width           float64      `json:"width"`
	Height          float64      `json:"height"`
	Sides           int          `json:"sides,omitempty"`
	Outline         []geom.Point `json:"outline,omitempty"`
	Angle           float64      `json:"angle"`
	Colors          []geom.Color `json:"colors"`
	AnimateRotation bool         `json:"animateRotation"`
	LockRatio       bool         `json:"lockRatio,omitempty"`
}

// NewRecord flattens s.
func NewRecord(s shape.Shape) Record {
	st := shape.Snapshot(s)
	return Record{
		ID:              st.ID,
		Kind:            st.Kind,
		Position:        st.Position,
		Width:           st.Width,
		Height:          st.Height,
		Sides:           st.Sides,
		Outline:         st.Outline,
		Angle:           st.Angle,
		Colors:          st.Colors,
		AnimateRotation: st.AnimateRotation,
		LockRatio:       st.LockRatio,
	}
}

// Shape rebuilds the concrete shape the record describes.
func (r Record) Shape() (shape.Shape, error) {
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, r.Kind)
	}
	if r.ID <= 0 {
		return nil, fmt.Errorf("%w: %s has id %d", ErrMalformed, r.Kind, r.ID)
	}
	s, err := shape.Restore(shape.State{
		ID:              r.ID,
		Kind:            r.Kind,
		Position:        r.Position,
		Width:           r.Width,
		Height:          r.Height,
		Angle:           r.Angle,
		Sides:           r.Sides,
		Outline:         r.Outline,
		Colors:          r.Colors,
		AnimateRotation: r.AnimateRotation,
		LockRatio:       r.LockRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return s, nil
}

// Encode serializes every shape of sc in paint order.
func Encode(sc *scene.Scene) ([]byte, error) {
	records := make([]Record, 0, sc.Len())
	for _, s := range sc.Shapes() {
		records = append(records, NewRecord(s))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode drawing: %w", err)
	}
	return data, nil
}

// Decode parses a drawing. It either returns every shape or an error; no
// partial result is produced.
func Decode(data []byte) ([]shape.Shape, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmpty
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	shapes := make([]shape.Shape, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, r := range records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: record %d repeats id %d", ErrMalformed, i, r.ID)
		}
		seen[r.ID] = true
		s, err := r.Shape()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

// Load decodes data and swaps it into sc. On error sc is untouched.
func Load(sc *scene.Scene, data []byte) error {
	shapes, err := Decode(data)
	if err != nil {
		return err
	}
	return sc.Replace(shapes)
}
