package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/webcad/webcad/backend-go/internal/geom"
)

const tol = 1e-9

func nearPoint(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) <= 1e-6 && math.Abs(a.Y-b.Y) <= 1e-6
}

func newShape(t *testing.T, kind Kind) Shape {
	t.Helper()
	s, err := New(kind, 1, DefaultDefaults(kind))
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return s
}

func TestSquare_Corners(t *testing.T) {
	s := NewSquare(1, DefaultDefaults(KindSquare))
	s.SetPosition(100, 100)
	s.SetWidth(50)

	want := []geom.Point{{X: 75, Y: 125}, {X: 125, Y: 125}, {X: 75, Y: 75}, {X: 125, Y: 75}}
	got := s.Vertices()
	if len(got) != len(want) {
		t.Fatalf("Vertices() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRecompute_Deterministic(t *testing.T) {
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newShape(t, kind)
			s.SetPosition(123.4, 56.7)
			s.SetWidth(80.25)
			s.SetHeight(31.5)
			s.SetAngle(37.3)
			first := s.Vertices()

			s.SetPosition(123.4, 56.7)
			second := s.Vertices()
			if len(first) != len(second) {
				t.Fatalf("vertex count changed: %d -> %d", len(first), len(second))
			}
			for i := range first {
				if first[i] != second[i] {
					t.Errorf("vertex %d changed: %v -> %v", i, first[i], second[i])
				}
			}
			if len(s.VertexColors()) != len(second) {
				t.Errorf("%d colors for %d vertices", len(s.VertexColors()), len(second))
			}
		})
	}
}

func TestSetAngle_Mod360(t *testing.T) {
	s := newShape(t, KindRectangle)
	s.SetAngle(370)
	if s.Angle() != 10 {
		t.Errorf("Angle() = %v, want 10", s.Angle())
	}
}

func TestRectangle_HitTestRotated(t *testing.T) {
	r := NewRectangle(1, DefaultDefaults(KindRectangle))
	r.SetPosition(200, 200)
	r.SetWidth(100)
	r.SetHeight(40)
	r.SetAngle(45)

	for i, v := range r.Vertices() {
		got, ok := r.HitTestVertex(v.X+1, v.Y-1, 3)
		if !ok || got != i {
			t.Errorf("HitTestVertex near vertex %d = %d, %v", i, got, ok)
		}
	}

	// A point away from every rotated corner misses.
	if i, ok := r.HitTestVertex(250, 250, 3); ok {
		t.Errorf("HitTestVertex(unrotated corner) = %d, want miss", i)
	}
}

func TestHitTestVertex_FirstMatchWins(t *testing.T) {
	s := NewSquare(1, DefaultDefaults(KindSquare))
	s.SetPosition(10, 10)
	s.SetWidth(0)
	i, ok := s.HitTestVertex(10, 10, 1)
	if !ok || i != 0 {
		t.Errorf("HitTestVertex on collapsed square = %d, %v, want 0, true", i, ok)
	}
}

func TestMoveVertex_FollowsAndAnchors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() Shape
		vertex   int
		opposite int
		dx, dy   float64
	}{
		{
			name: "rectangle rotated",
			build: func() Shape {
				r := NewRectangle(1, DefaultDefaults(KindRectangle))
				r.SetPosition(300, 200)
				r.SetWidth(120)
				r.SetHeight(60)
				r.SetAngle(30)
				return r
			},
			vertex: 1, opposite: 2, dx: 7, dy: -4,
		},
		{
			name: "line",
			build: func() Shape {
				l := NewLine(1, DefaultDefaults(KindLine))
				l.SetEndpoints(geom.Pt(10, 10), geom.Pt(110, 60))
				return l
			},
			vertex: 1, opposite: 0, dx: 15, dy: 25,
		},
		{
			name: "square along diagonal",
			build: func() Shape {
				s := NewSquare(1, DefaultDefaults(KindSquare))
				s.SetPosition(100, 100)
				s.SetWidth(50)
				s.SetAngle(20)
				return s
			},
			vertex: 3, opposite: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.build()
			before := s.Vertices()
			dx, dy := tt.dx, tt.dy
			if dx == 0 && dy == 0 {
				// Drag along the diagonal away from the center.
				dir := before[tt.vertex].Sub(s.Position())
				dx, dy = dir.X*0.2, dir.Y*0.2
			}
			v := before[tt.vertex]
			s.MoveVertex(v.X, v.Y, 2, dx, dy)
			after := s.Vertices()

			if want := v.Add(geom.Pt(dx, dy)); !nearPoint(after[tt.vertex], want) {
				t.Errorf("dragged vertex = %v, want %v", after[tt.vertex], want)
			}
			if !nearPoint(after[tt.opposite], before[tt.opposite]) {
				t.Errorf("anchored vertex moved %v -> %v", before[tt.opposite], after[tt.opposite])
			}
		})
	}
}

func TestMoveVertex_Miss(t *testing.T) {
	r := NewRectangle(1, DefaultDefaults(KindRectangle))
	r.SetPosition(50, 50)
	r.SetWidth(20)
	r.SetHeight(20)
	r.MoveVertex(0, 0, 2, 10, 10)
	if r.Width() != 20 || r.Height() != 20 || r.Position() != geom.Pt(50, 50) {
		t.Errorf("MoveVertex on a miss changed the rectangle: %v %v %v", r.Position(), r.Width(), r.Height())
	}
}

func TestPolygon_MoveVertexZero(t *testing.T) {
	p := NewPolygon(1, Defaults{Color: geom.Black, Sides: 6})
	p.SetPosition(100, 100)
	p.SetWidth(40)
	p.SetHeight(40)
	v := p.Vertices()[0]
	p.MoveVertex(v.X, v.Y, 2, 10, 0)
	if got := p.Vertices()[0]; !nearPoint(got, geom.Pt(v.X+10, v.Y)) {
		t.Errorf("vertex 0 = %v, want %v", got, geom.Pt(v.X+10, v.Y))
	}
	if p.Width() != 50 {
		t.Errorf("Width() = %v, want 50", p.Width())
	}
}

func TestPolygon_MoveVertexNearCenterLine(t *testing.T) {
	apex, origin := geom.Pt(50.5, 100), geom.Pt(0, 0)
	p, ok := NewPolygonFromPoints(1, DefaultDefaults(KindPolygon), []geom.Point{origin, geom.Pt(100, 0), apex})
	if !ok {
		t.Fatal("triangle rejected")
	}
	index := func(pt geom.Point) int {
		for i, v := range p.Vertices() {
			if nearPoint(v, pt) {
				return i
			}
		}
		t.Fatalf("no vertex at %v in %v", pt, p.Vertices())
		return -1
	}
	ia, iorig := index(apex), index(origin)

	p.MoveVertex(apex.X, apex.Y, 10, 1, 1)
	v := p.Vertices()
	if want := apex.Add(geom.Pt(1, 1)); !nearPoint(v[ia], want) {
		t.Errorf("apex = %v, want %v", v[ia], want)
	}
	if !nearPoint(v[iorig], origin) {
		t.Errorf("anchored vertex moved to %v", v[iorig])
	}
	if p.Width() > 103 || p.Height() > 103 {
		t.Errorf("a 1px drag resized the triangle to %vx%v", p.Width(), p.Height())
	}
}

func TestMoveVertexIndex_OutOfRange(t *testing.T) {
	shapes := []Shape{
		NewSquare(1, DefaultDefaults(KindSquare)),
		NewRectangle(2, DefaultDefaults(KindRectangle)),
		NewLine(3, DefaultDefaults(KindLine)),
		NewPolygon(4, DefaultDefaults(KindPolygon)),
	}
	for _, s := range shapes {
		s.SetPosition(50, 50)
		s.SetWidth(20)
		s.SetHeight(20)
		for _, i := range []int{-1, len(s.Vertices())} {
			s.MoveVertexIndex(i, 5, 5)
		}
		if s.Width() != 20 || s.Height() != 20 || s.Position() != geom.Pt(50, 50) {
			t.Errorf("%s changed: %v %vx%v", s.Kind(), s.Position(), s.Width(), s.Height())
		}
	}
}

func TestPolygon_SetSides(t *testing.T) {
	red := geom.MustHex("#ff0000")
	p := NewPolygon(1, Defaults{Color: geom.Black, Sides: 3})
	p.SetPosition(100, 100)
	p.SetWidth(60)
	p.SetHeight(60)
	if err := p.SetVertexColor(0, red); err != nil {
		t.Fatal(err)
	}

	p.SetSides(5)
	colors := p.VertexColors()
	if len(p.Vertices()) != 5 || len(colors) != 5 {
		t.Fatalf("after SetSides(5): %d vertices, %d colors", len(p.Vertices()), len(colors))
	}
	if colors[0] != red || colors[3] != geom.Black || colors[4] != geom.Black {
		t.Errorf("colors after growing = %v", colors)
	}
	for i, v := range p.Vertices() {
		theta := 2 * math.Pi * float64(i) / 5
		want := geom.Pt(100+30*math.Cos(theta), 100+30*math.Sin(theta))
		if !nearPoint(v, want) {
			t.Errorf("vertex %d = %v, want %v", i, v, want)
		}
	}

	p.SetSides(3)
	if len(p.Vertices()) != 3 || len(p.VertexColors()) != 3 {
		t.Fatalf("after SetSides(3): %d vertices, %d colors", len(p.Vertices()), len(p.VertexColors()))
	}
	if p.VertexColors()[0] != red {
		t.Errorf("shrinking dropped the first color")
	}

	p.SetSides(2)
	if p.Sides() != 3 {
		t.Errorf("SetSides(2) changed sides to %d", p.Sides())
	}

	green := geom.MustHex("#00ff00")
	if err := p.SetAllVertexColors("#00ff00"); err != nil {
		t.Fatal(err)
	}
	p.SetSides(4)
	if got := p.VertexColors()[3]; got != green {
		t.Errorf("vertex added after recoloring = %v, want %v", got, green)
	}
}

func TestPolygon_LockRatio(t *testing.T) {
	p := NewPolygon(1, DefaultDefaults(KindPolygon))
	p.SetWidth(40)
	p.SetHeight(20)
	p.SetLockRatio(true)
	p.SetWidth(80)
	if p.Height() != 40 {
		t.Errorf("Height() = %v, want 40", p.Height())
	}
	p.SetHeight(10)
	if p.Width() != 20 {
		t.Errorf("Width() = %v, want 20", p.Width())
	}
}

func TestPolygon_FromPoints(t *testing.T) {
	clicks := []geom.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 60, Y: 30}, {X: 110, Y: 90}, {X: 10, Y: 90}}
	p, ok := NewPolygonFromPoints(4, DefaultDefaults(KindPolygon), clicks)
	if !ok {
		t.Fatal("NewPolygonFromPoints reported a degenerate hull")
	}
	if p.Sides() != 4 || p.Position() != geom.Pt(60, 50) || p.Width() != 100 || p.Height() != 80 {
		t.Fatalf("polygon = sides %d pos %v size %vx%v", p.Sides(), p.Position(), p.Width(), p.Height())
	}
	want := []geom.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 90}, {X: 10, Y: 90}}
	for i, v := range p.Vertices() {
		if !nearPoint(v, want[i]) {
			t.Errorf("vertex %d = %v, want %v", i, v, want[i])
		}
	}

	if _, ok := NewPolygonFromPoints(5, DefaultDefaults(KindPolygon), clicks[:2]); ok {
		t.Error("two points produced a polygon")
	}
}

func TestPolygon_ToConvexHull(t *testing.T) {
	p := NewPolygon(1, Defaults{Color: geom.Black, Sides: 8})
	p.SetPosition(50, 50)
	p.SetWidth(40)
	p.SetHeight(20)
	before := p.Vertices()
	if !p.ToConvexHull() {
		t.Fatal("ToConvexHull failed on a regular octagon")
	}
	if p.Sides() != 8 || len(p.VertexColors()) != 8 {
		t.Fatalf("hull has %d sides, %d colors", p.Sides(), len(p.VertexColors()))
	}
	for _, v := range p.Vertices() {
		found := false
		for _, b := range before {
			if nearPoint(v, b) {
				found = true
			}
		}
		if !found {
			t.Errorf("hull vertex %v is not an original vertex", v)
		}
	}

	flat := NewPolygon(2, DefaultDefaults(KindPolygon))
	flat.SetWidth(30)
	if flat.ToConvexHull() {
		t.Error("ToConvexHull succeeded on a zero-height polygon")
	}
	if flat.Sides() != 3 || flat.Outline() != nil {
		t.Error("failed ToConvexHull changed the polygon")
	}
}

func TestSetAllVertexColors_Malformed(t *testing.T) {
	s := newShape(t, KindSquare)
	if err := s.SetAllVertexColors("#00ff00"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAllVertexColors("green"); !errors.Is(err, geom.ErrInvalidHex) {
		t.Fatalf("SetAllVertexColors(green) error = %v", err)
	}
	for _, c := range s.VertexColors() {
		if c != geom.MustHex("#00ff00") {
			t.Errorf("color changed to %v after malformed input", c)
		}
	}
}

func TestDeviceVertices(t *testing.T) {
	r := NewRectangle(1, DefaultDefaults(KindRectangle))
	r.SetPosition(400, 300)
	r.SetWidth(800)
	r.SetHeight(600)
	got := r.DeviceVertices(800, 600)
	want := []float32{-1, 1, 1, 1, -1, -1, 1, -1}
	if len(got) != len(want) {
		t.Fatalf("DeviceVertices = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("DeviceVertices[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	colors := r.DeviceColors()
	if len(colors) != 16 || colors[3] != 1 || colors[0] != 0 {
		t.Errorf("DeviceColors = %v", colors)
	}
}

func TestPrimitives(t *testing.T) {
	want := map[Kind]Primitive{
		KindSquare:    TriangleStrip,
		KindRectangle: TriangleStrip,
		KindLine:      Lines,
		KindPolygon:   TriangleFan,
	}
	for kind, p := range want {
		if got := newShape(t, kind).Primitive(); got != p {
			t.Errorf("%s primitive = %v, want %v", kind, got, p)
		}
	}
}

func TestAttributes_Set(t *testing.T) {
	p := NewPolygon(1, DefaultDefaults(KindPolygon))
	attrs := p.Attributes()

	sides, ok := FindAttribute(attrs, "poly-sides")
	if !ok {
		t.Fatal("no poly-sides attribute")
	}
	if err := sides.Set("6"); err != nil {
		t.Fatal(err)
	}
	if err := sides.Set("2"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Set(2) error = %v", err)
	}
	if p.Sides() != 6 {
		t.Errorf("Sides() = %d, want 6", p.Sides())
	}

	width, _ := FindAttribute(attrs, "poly-width")
	if err := width.Set("abc"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Set(abc) error = %v", err)
	}
	if err := width.Set("12.5"); err != nil || p.Width() != 12.5 {
		t.Errorf("Set(12.5) = %v, width %v", err, p.Width())
	}

	anim, _ := FindAttribute(attrs, "animate-rotation")
	if err := anim.Set("on"); err != nil || !p.AnimateRotation() {
		t.Errorf("animate-rotation Set(on) = %v, on %v", err, p.AnimateRotation())
	}

	color, _ := FindAttribute(attrs, "color")
	if err := color.Set("#zzzzzz"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("color Set(#zzzzzz) error = %v", err)
	}
	if err := color.Set("#0000ff"); err != nil {
		t.Fatal(err)
	}
	for _, c := range p.VertexColors() {
		if c != geom.MustHex("#0000ff") {
			t.Fatalf("color = %v, want blue", c)
		}
	}
}

func TestVertexAttributes(t *testing.T) {
	s := NewSquare(1, DefaultDefaults(KindSquare))
	s.SetPosition(50, 50)
	s.SetWidth(20)

	if attrs := s.VertexAttributes(0, 0, 2); attrs != nil {
		t.Errorf("VertexAttributes on a miss = %v", attrs)
	}
	attrs := s.VertexAttributes(60, 40, 2)
	if len(attrs) != 1 {
		t.Fatalf("VertexAttributes = %v", attrs)
	}
	if err := attrs[0].Set("#ff00ff"); err != nil {
		t.Fatal(err)
	}
	if got := s.VertexColors()[3]; got != geom.MustHex("#ff00ff") {
		t.Errorf("bottom-right color = %v", got)
	}
}

func TestCreateAttributes(t *testing.T) {
	d := DefaultDefaults(KindPolygon)
	attrs := CreateAttributes(KindPolygon, &d)
	sides, _ := FindAttribute(attrs, "create-sides")
	if err := sides.Set("7"); err != nil || d.Sides != 7 {
		t.Errorf("create-sides Set(7) = %v, sides %d", err, d.Sides)
	}
	if err := sides.Set("x"); err == nil || d.Sides != 7 {
		t.Errorf("create-sides Set(x) = %v, sides %d", err, d.Sides)
	}
	color, _ := FindAttribute(attrs, "create-color")
	if err := color.Set("#123456"); err != nil || d.Color != geom.MustHex("#123456") {
		t.Errorf("create-color Set = %v, color %v", err, d.Color)
	}

	if _, ok := FindAttribute(CreateAttributes(KindSquare, &d), "create-sides"); ok {
		t.Error("square has a sides creation attribute")
	}
}

func TestSnapshotRestore(t *testing.T) {
	p := NewPolygon(9, Defaults{Color: geom.Black, Sides: 5})
	p.SetPosition(10, 20)
	p.SetWidth(30)
	p.SetHeight(40)
	p.SetAngle(15)
	p.SetLockRatio(true)
	p.SetAnimateRotation(true)
	_ = p.SetVertexColor(2, geom.White)

	restored, err := Restore(Snapshot(p))
	if err != nil {
		t.Fatal(err)
	}
	rp, ok := restored.(*Polygon)
	if !ok {
		t.Fatalf("Restore returned %T", restored)
	}
	if rp.ID() != 9 || rp.Sides() != 5 || !rp.LockRatio() || !rp.AnimateRotation() {
		t.Errorf("restored polygon = %+v", Snapshot(rp))
	}
	for i, v := range p.Vertices() {
		if rp.Vertices()[i] != v {
			t.Errorf("vertex %d = %v, want %v", i, rp.Vertices()[i], v)
		}
	}
	if rp.VertexColors()[2] != geom.White {
		t.Errorf("vertex color not restored")
	}

	bad := Snapshot(p)
	bad.Colors = bad.Colors[:2]
	if _, err := Restore(bad); err == nil {
		t.Error("Restore accepted a short color list")
	}
	bad = Snapshot(p)
	bad.Kind = "circle"
	if _, err := Restore(bad); err == nil {
		t.Error("Restore accepted an unknown kind")
	}
}
