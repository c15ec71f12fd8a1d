package render

import (
	"errors"
	"log/slog"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/scene"
)

// ErrContextUnavailable is returned when a drawing surface cannot be set up.
var ErrContextUnavailable = errors.New("graphics context unavailable")

// HitBackground is the clear color of the hit surface; it decodes to no shape.
var HitBackground = geom.Color{A: 0xff}

// Surface is a render target the pipeline can paint and read back. Pixel
// coordinates have their origin at the lower-left corner.
type Surface interface {
	Size() (width, height int)
	Clear(c geom.Color)
	Upload(vertices, colors []float32)
	Draw(cmd DrawCommand)
	ReadPixel(x, y int) [4]uint8
}

// Options configures a Renderer.
type Options struct {
	Tolerance  float64    // handle half-size in pixels
	Background geom.Color // visible clear color
}

// Renderer paints a scene onto a visible surface and a hit surface.
type Renderer struct {
	visible Surface
	hit     Surface
	opts    Options
}

// NewRenderer binds the two surfaces. Both are required.
func NewRenderer(visible, hit Surface, opts Options) (*Renderer, error) {
	if visible == nil || hit == nil {
		return nil, ErrContextUnavailable
	}
	return &Renderer{visible: visible, hit: hit, opts: opts}, nil
}

// Render builds a frame for sc, sized to the visible surface, and draws it
// onto both surfaces.
func (r *Renderer) Render(sc *scene.Scene) *Frame {
	w, h := r.visible.Size()
	f := Build(sc, w, h, r.opts.Tolerance)
	paint(r.visible, &f.Visible, r.opts.Background)
	paint(r.hit, &f.Hit, HitBackground)
	slog.Debug("rendered frame", "shapes", sc.Len(), "commands", len(f.Visible.Commands))
	return f
}

func paint(s Surface, b *Buffers, bg geom.Color) {
	s.Clear(bg)
	s.Upload(b.Vertices, b.Colors)
	for _, cmd := range b.Commands {
		s.Draw(cmd)
	}
}

// Pick decodes the hit-surface pixel at (x, y).
func (r *Renderer) Pick(x, y int) Pick {
	w, h := r.hit.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return Pick{}
	}
	return DecodePick(r.hit.ReadPixel(x, y))
}

// Visible returns the visible surface.
func (r *Renderer) Visible() Surface { return r.visible }
