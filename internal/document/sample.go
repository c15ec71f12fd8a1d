package document

import (
	"github.com/webcad/webcad/backend-go/internal/geom"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

// NewSampleScene returns a small drawing with one shape of every kind.
func NewSampleScene() *scene.Scene {
	sc := scene.New()

	rect, _ := sc.CreateShape(shape.KindRectangle, geom.Pt(220, 380))
	rect.SetWidth(240)
	rect.SetHeight(140)
	for i, hex := range []string{"#e63946", "#f1c453", "#457b9d", "#2a9d8f"} {
		_ = rect.SetVertexColor(i, geom.MustHex(hex))
	}

	sq, _ := sc.CreateShape(shape.KindSquare, geom.Pt(560, 420))
	sq.SetWidth(120)
	sq.SetAngle(30)
	_ = sq.SetAllVertexColors("#1d3557")

	line, _ := sc.CreateShape(shape.KindLine, geom.Pt(0, 0))
	line.(*shape.Line).SetEndpoints(geom.Pt(80, 120), geom.Pt(720, 180))
	_ = line.SetAllVertexColors("#264653")

	sc.SetDefaults(shape.KindPolygon, shape.Defaults{Color: geom.MustHex("#8338ec"), Sides: 6})
	hex, _ := sc.CreateShape(shape.KindPolygon, geom.Pt(400, 200))
	hex.SetWidth(160)
	hex.SetHeight(160)
	hex.SetAnimateRotation(true)
	sc.SetDefaults(shape.KindPolygon, shape.DefaultDefaults(shape.KindPolygon))

	return sc
}

// Sample returns the sample drawing encoded.
func Sample() []byte {
	data, _ := Encode(NewSampleScene())
	return data
}
