package editor

import (
	"errors"
	"log/slog"

	"github.com/webcad/webcad/backend-go/internal/document"
)

// ErrLoadCancelled is returned when the user declines to discard the
// current drawing.
var ErrLoadCancelled = errors.New("load cancelled")

// Save encodes the drawing.
func (e *Editor) Save() ([]byte, error) {
	return document.Encode(e.scene)
}

// Load replaces the drawing with data. When the scene is not empty confirm
// is asked first; a nil confirm discards without asking. A declined,
// empty or malformed load leaves the scene as it was.
func (e *Editor) Load(data []byte, confirm func() bool) error {
	if e.scene.Len() > 0 && confirm != nil && !confirm() {
		return ErrLoadCancelled
	}
	shapes, err := document.Decode(data)
	if err != nil {
		slog.Debug("load aborted", "error", err)
		return err
	}
	if err := e.scene.Replace(shapes); err != nil {
		slog.Debug("load aborted", "error", err)
		return err
	}
	e.gesture = nil
	e.points = nil
	e.dirty = true
	return nil
}

// LoadSample replaces the drawing with the built-in sample.
func (e *Editor) LoadSample() {
	if err := e.Load(document.Sample(), nil); err != nil {
		slog.Error("load sample", "error", err)
	}
}
