package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// Raster is a CPU Surface backed by an RGBA image. Triangle coverage comes
// from a vector rasterizer; a pixel is painted when at least half covered,
// with its color interpolated across the triangle. Line-list segments are
// drawn as quads LineWidth pixels wide.
type Raster struct {
	img       *image.RGBA
	lineWidth float64
	vertices  []float32
	colors    []float32
}

type rasterVertex struct {
	p geom.Point // image space, y down
	c [4]float32
}

// NewRaster allocates a width x height surface.
func NewRaster(width, height int, lineWidth float64) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster size %dx%d", ErrContextUnavailable, width, height)
	}
	return &Raster{
		img:       image.NewRGBA(image.Rect(0, 0, width, height)),
		lineWidth: max(lineWidth, 1),
	}, nil
}

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Clear(c geom.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(toRGBA(c)), image.Point{}, draw.Src)
}

func (r *Raster) Upload(vertices, colors []float32) {
	r.vertices = vertices
	r.colors = colors
}

func (r *Raster) Draw(cmd DrawCommand) {
	end := cmd.First + cmd.Count
	if cmd.First < 0 || 2*end > len(r.vertices) || 4*end > len(r.colors) {
		return
	}
	switch cmd.Mode {
	case shape.TriangleStrip:
		for i := cmd.First; i+2 < end; i++ {
			r.fillTriangle(r.vertex(i), r.vertex(i+1), r.vertex(i+2))
		}
	case shape.TriangleFan:
		for i := cmd.First + 1; i+1 < end; i++ {
			r.fillTriangle(r.vertex(cmd.First), r.vertex(i), r.vertex(i+1))
		}
	case shape.Lines:
		for i := cmd.First; i+1 < end; i += 2 {
			r.strokeSegment(r.vertex(i), r.vertex(i+1))
		}
	}
}

func (r *Raster) ReadPixel(x, y int) [4]uint8 {
	w, h := r.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return [4]uint8{}
	}
	c := r.img.RGBAAt(x, h-1-y)
	return [4]uint8{c.R, c.G, c.B, c.A}
}

// Image returns the backing image. Row 0 is the top of the canvas.
func (r *Raster) Image() *image.RGBA { return r.img }

// WritePNG encodes the surface as PNG.
func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// vertex maps uploaded vertex i from device space to image space.
func (r *Raster) vertex(i int) rasterVertex {
	w, h := r.Size()
	x := (float64(r.vertices[2*i]) + 1) / 2 * float64(w)
	y := float64(h) - (float64(r.vertices[2*i+1])+1)/2*float64(h)
	var c [4]float32
	copy(c[:], r.colors[4*i:4*i+4])
	return rasterVertex{p: geom.Pt(x, y), c: c}
}

func (r *Raster) strokeSegment(a, b rasterVertex) {
	d := b.p.Sub(a.p)
	length := math.Hypot(d.X, d.Y)
	if length < 1e-9 {
		return
	}
	half := r.lineWidth / 2
	n := geom.Pt(-d.Y/length*half, d.X/length*half)
	a0 := rasterVertex{p: a.p.Add(n), c: a.c}
	a1 := rasterVertex{p: a.p.Sub(n), c: a.c}
	b0 := rasterVertex{p: b.p.Add(n), c: b.c}
	b1 := rasterVertex{p: b.p.Sub(n), c: b.c}
	r.fillTriangle(a0, a1, b0)
	r.fillTriangle(a1, b0, b1)
}

func (r *Raster) fillTriangle(a, b, c rasterVertex) {
	area := edge(a.p, b.p, c.p)
	if math.Abs(area) < 1e-12 {
		return
	}
	w, h := r.Size()
	poly := clipPolygon([]geom.Point{a.p, b.p, c.p}, float64(w), float64(h))
	if len(poly) < 3 {
		return
	}
	bb := geom.Bounds(poly)
	rect := image.Rect(
		int(math.Floor(bb.X)), int(math.Floor(bb.Y)),
		int(math.Ceil(bb.X+bb.Width)), int(math.Ceil(bb.Y+bb.Height)),
	).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}

	ras := vector.NewRasterizer(rect.Dx(), rect.Dy())
	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	ras.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
	for _, p := range poly[1:] {
		ras.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	ras.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			if mask.AlphaAt(x, y).A < 0x80 {
				continue
			}
			px, py := rect.Min.X+x, rect.Min.Y+y
			p := geom.Pt(float64(px)+0.5, float64(py)+0.5)
			wa := edge(b.p, c.p, p) / area
			wb := edge(c.p, a.p, p) / area
			wc := 1 - wa - wb
			var col [4]float32
			for i := range col {
				col[i] = a.c[i]*float32(wa) + b.c[i]*float32(wb) + c.c[i]*float32(wc)
			}
			r.img.SetRGBA(px, py, floatRGBA(col))
		}
	}
}

// edge is twice the signed area of triangle (a, b, p).
func edge(a, b, p geom.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

type halfPlane struct {
	vertical bool // clip on x when true, y otherwise
	bound    float64
	keepLess bool
}

func (hp halfPlane) coord(p geom.Point) float64 {
	if hp.vertical {
		return p.X
	}
	return p.Y
}

func (hp halfPlane) inside(p geom.Point) bool {
	if hp.keepLess {
		return hp.coord(p) <= hp.bound
	}
	return hp.coord(p) >= hp.bound
}

func (hp halfPlane) intersect(a, b geom.Point) geom.Point {
	t := (hp.bound - hp.coord(a)) / (hp.coord(b) - hp.coord(a))
	return geom.Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
}

// clipPolygon clips a convex polygon to [0,w]x[0,h] (Sutherland-Hodgman).
func clipPolygon(poly []geom.Point, w, h float64) []geom.Point {
	planes := [...]halfPlane{
		{vertical: true, bound: 0},
		{vertical: true, bound: w, keepLess: true},
		{vertical: false, bound: 0},
		{vertical: false, bound: h, keepLess: true},
	}
	for _, hp := range planes {
		if len(poly) == 0 {
			return nil
		}
		out := make([]geom.Point, 0, len(poly)+1)
		prev := poly[len(poly)-1]
		for _, cur := range poly {
			curIn, prevIn := hp.inside(cur), hp.inside(prev)
			if curIn != prevIn {
				out = append(out, hp.intersect(prev, cur))
			}
			if curIn {
				out = append(out, cur)
			}
			prev = cur
		}
		poly = out
	}
	return poly
}

func toRGBA(c geom.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func floatRGBA(c [4]float32) color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}

// RenderImage paints sc without selection decorations onto a fresh raster,
// as an export does.
func RenderImage(sc *scene.Scene, width, height int, opts Options, lineWidth float64) (*Raster, error) {
	visible, err := NewRaster(width, height, lineWidth)
	if err != nil {
		return nil, err
	}
	hit, err := NewRaster(width, height, lineWidth)
	if err != nil {
		return nil, err
	}
	rd, err := NewRenderer(visible, hit, opts)
	if err != nil {
		return nil, err
	}
	selected := sc.SelectedID()
	sc.Select(0)
	rd.Render(sc)
	sc.Select(selected)
	return visible, nil
}
