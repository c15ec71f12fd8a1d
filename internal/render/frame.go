// Package render turns a scene into draw buffers for two surfaces: the
// visible canvas and an off-screen hit surface whose pixels encode the shape
// id and region under them.
package render

import (
	"encoding/json"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// HandleColor paints vertex handles and selection brackets.
var HandleColor = geom.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// DrawCommand is one draw call over a run of vertices.
type DrawCommand struct {
	First   int             `json:"first"`
	Count   int             `json:"count"`
	Mode    shape.Primitive `json:"mode"`
	ShapeID int             `json:"shapeId,omitempty"` // 0 for decorations
}

// Buffers is one vertex/color buffer pair plus the commands drawing it.
// Vertices holds x,y pairs in device space; Colors holds r,g,b,a in 0..1.
type Buffers struct {
	Vertices []float32    `json:"vertices"`
	Colors   []float32    `json:"colors"`
	Commands []DrawCommand `json:"commands"`
}

// VertexCount returns the number of vertices in the buffers.
func (b *Buffers) VertexCount() int { return len(b.Vertices) / 2 }

// Frame is everything needed to paint both surfaces once. Visible and Hit
// share geometry and commands and differ only in color.
type Frame struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Visible Buffers `json:"visible"`
	Hit     Buffers `json:"hit"`
}

// JSON serializes the frame for a JS host.
func (f *Frame) JSON() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// Build lays out every shape of sc in paint order for a canvas of the given
// size. The selected shape also gets a handle per vertex and four corner
// brackets around its bounding box; tolerance sizes both.
func Build(sc *scene.Scene, width, height int, tolerance float64) *Frame {
	f := &Frame{Width: width, Height: height}
	b := builder{
		frame:  f,
		device: geom.DeviceTransform(float64(width), float64(height)),
	}
	cw, ch := float64(width), float64(height)
	for _, s := range sc.Shapes() {
		verts := s.DeviceVertices(cw, ch)
		b.appendRun(s.ID(), s.Primitive(), verts, s.DeviceColors(), EncodeHit(s.ID(), RegionBody))

		if s.ID() != sc.SelectedID() {
			continue
		}
		for _, v := range s.Vertices() {
			b.appendPixels(s.ID(), shape.TriangleStrip, handleQuad(v, tolerance), HandleColor, EncodeHit(s.ID(), RegionHandle))
		}
		for _, bracket := range brackets(geom.Bounds(s.Vertices()), tolerance) {
			b.appendPixels(0, shape.Lines, bracket, HandleColor, EncodeHit(0, RegionBody))
		}
	}
	f.Hit.Vertices = f.Visible.Vertices
	f.Hit.Commands = f.Visible.Commands
	return f
}

type builder struct {
	frame  *Frame
	device geom.Matrix2D
}

// appendRun adds a run whose visible colors are given per vertex and whose
// hit color is flat.
func (b *builder) appendRun(id int, mode shape.Primitive, verts, colors []float32, hit [4]float32) {
	vis := &b.frame.Visible
	cmd := DrawCommand{First: vis.VertexCount(), Count: len(verts) / 2, Mode: mode, ShapeID: id}
	if cmd.Count == 0 {
		return
	}
	vis.Vertices = append(vis.Vertices, verts...)
	vis.Colors = append(vis.Colors, colors...)
	vis.Commands = append(vis.Commands, cmd)
	for range cmd.Count {
		b.frame.Hit.Colors = append(b.frame.Hit.Colors, hit[:]...)
	}
}

// appendPixels adds a flat-colored run given in pixel space.
func (b *builder) appendPixels(id int, mode shape.Primitive, pts []geom.Point, c geom.Color, hit [4]float32) {
	verts := make([]float32, 0, 2*len(pts))
	colors := make([]float32, 0, 4*len(pts))
	n := c.Normalized()
	for _, p := range pts {
		d := b.device.Apply(p)
		verts = append(verts, float32(d.X), float32(d.Y))
		colors = append(colors, n[:]...)
	}
	b.appendRun(id, mode, verts, colors, hit)
}

// handleQuad is a square of half-size r around p in strip order.
func handleQuad(p geom.Point, r float64) []geom.Point {
	return []geom.Point{
		{X: p.X - r, Y: p.Y + r},
		{X: p.X + r, Y: p.Y + r},
		{X: p.X - r, Y: p.Y - r},
		{X: p.X + r, Y: p.Y - r},
	}
}

// brackets returns four L-shaped corner marks, as line-list segments, just
// outside bounds.
func brackets(bounds geom.Rect, gap float64) [][]geom.Point {
	r := bounds.Expand(gap)
	arm := 2 * gap
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	corner := func(x, y, sx, sy float64) []geom.Point {
		return []geom.Point{
			{X: x, Y: y}, {X: x + sx*arm, Y: y},
			{X: x, Y: y}, {X: x, Y: y + sy*arm},
		}
	}
	return [][]geom.Point{
		corner(x0, y1, 1, -1),
		corner(x1, y1, -1, -1),
		corner(x0, y0, 1, 1),
		corner(x1, y0, -1, 1),
	}
}
