//go:build !js

package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/render"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

var whiteImage = ebiten.NewImage(3, 3)

// whiteSubImage is a source texel for untextured triangles.
var whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

func init() {
	whiteImage.Fill(color.White)
}

// ebitenSurface is a render.Surface drawing onto an offscreen ebiten image.
type ebitenSurface struct {
	img       *ebiten.Image
	width     int
	height    int
	lineWidth float32
	vertices  []float32
	colors    []float32
}

func newEbitenSurface(width, height int, lineWidth float32) *ebitenSurface {
	return &ebitenSurface{
		img:       ebiten.NewImage(width, height),
		width:     width,
		height:    height,
		lineWidth: lineWidth,
	}
}

func (s *ebitenSurface) Size() (int, int) { return s.width, s.height }

func (s *ebitenSurface) Clear(c geom.Color) {
	s.img.Fill(color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}

func (s *ebitenSurface) Upload(vertices, colors []float32) {
	s.vertices = vertices
	s.colors = colors
}

func (s *ebitenSurface) Draw(cmd render.DrawCommand) {
	end := cmd.First + cmd.Count
	if cmd.First < 0 || 2*end > len(s.vertices) || 4*end > len(s.colors) {
		return
	}
	if cmd.Mode == shape.Lines {
		for i := cmd.First; i+1 < end; i += 2 {
			a, b := s.vertex(i), s.vertex(i+1)
			vector.StrokeLine(s.img, a.DstX, a.DstY, b.DstX, b.DstY, s.lineWidth, vertexColor(a), true)
		}
		return
	}

	verts := make([]ebiten.Vertex, 0, cmd.Count)
	for i := cmd.First; i < end; i++ {
		verts = append(verts, s.vertex(i))
	}
	var indices []uint16
	for i := 2; i < len(verts); i++ {
		switch cmd.Mode {
		case shape.TriangleStrip:
			indices = append(indices, uint16(i-2), uint16(i-1), uint16(i))
		case shape.TriangleFan:
			indices = append(indices, 0, uint16(i-1), uint16(i))
		}
	}
	s.img.DrawTriangles(verts, indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (s *ebitenSurface) ReadPixel(x, y int) [4]uint8 {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return [4]uint8{}
	}
	c := color.RGBAModel.Convert(s.img.At(x, s.height-1-y)).(color.RGBA)
	return [4]uint8{c.R, c.G, c.B, c.A}
}

// vertex maps uploaded vertex i from device space to image pixels.
func (s *ebitenSurface) vertex(i int) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   (s.vertices[2*i] + 1) / 2 * float32(s.width),
		DstY:   float32(s.height) - (s.vertices[2*i+1]+1)/2*float32(s.height),
		SrcX:   1,
		SrcY:   1,
		ColorR: s.colors[4*i],
		ColorG: s.colors[4*i+1],
		ColorB: s.colors[4*i+2],
		ColorA: s.colors[4*i+3],
	}
}

func vertexColor(v ebiten.Vertex) color.Color {
	return color.NRGBA{
		R: uint8(v.ColorR*255 + 0.5),
		G: uint8(v.ColorG*255 + 0.5),
		B: uint8(v.ColorB*255 + 0.5),
		A: uint8(v.ColorA*255 + 0.5),
	}
}
