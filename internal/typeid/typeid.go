// Package typeid issues the prefixed, sortable ids stored in the database.
package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the kind of record an id belongs to.
type Prefix string

const (
	User     Prefix = "user"
	Drawing  Prefix = "draw"
	Snapshot Prefix = "snap"
	Session  Prefix = "sess"
)

// ErrInvalid is wrapped by every Check failure.
var ErrInvalid = errors.New("invalid id")

// New returns a fresh id of kind p.
func (p Prefix) New() string {
	return typeid.MustGenerate(string(p)).String()
}

// Check reports whether id parses and carries prefix p.
func (p Prefix) Check(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, id, err)
	}
	if got := Prefix(parsed.Prefix()); got != p {
		return fmt.Errorf("%w %q: %s id where %s expected", ErrInvalid, id, got, p)
	}
	return nil
}
