package geom

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestRotate_RoundTrip(t *testing.T) {
	tests := []struct {
		x, y, angle float64
	}{
		{0, 0, 0},
		{1, 0, 90},
		{10, -4, 33.3},
		{-250.5, 999, 270},
		{1e-3, 7, -721},
		{123456, -654321, 1e4},
	}
	for _, tt := range tests {
		x, y := Rotate(tt.x, tt.y, tt.angle)
		bx, by := Rotate(x, y, -tt.angle)
		tol := eps * math.Max(1, math.Hypot(tt.x, tt.y))
		if math.Abs(bx-tt.x) > tol || math.Abs(by-tt.y) > tol {
			t.Errorf("Rotate(Rotate(%v, %v, %v), -a) = (%v, %v)", tt.x, tt.y, tt.angle, bx, by)
		}
	}
}

func TestRotate_QuarterTurn(t *testing.T) {
	x, y := Rotate(1, 0, 90)
	if !near(x, 0) || !near(y, 1) {
		t.Errorf("Rotate(1, 0, 90) = (%v, %v), want (0, 1)", x, y)
	}
}

func TestHexToColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Color
		wantErr bool
	}{
		{name: "black", in: "#000000", want: Color{0, 0, 0, 255}},
		{name: "mixed case", in: "#fF8000", want: Color{255, 128, 0, 255}},
		{name: "no hash", in: "00ff7f", want: Color{0, 255, 127, 255}},
		{name: "short", in: "#fff", wantErr: true},
		{name: "not hex", in: "#gg0000", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "sign", in: "#+12345", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Fatalf("HexToColor(%q) error = %v, want ErrInvalidHex", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToColor(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("HexToColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColor_HexRoundTrip(t *testing.T) {
	c := Color{18, 52, 86, 255}
	got, err := HexToColor(c.Hex())
	if err != nil || got != c {
		t.Errorf("HexToColor(%q) = %v, %v", c.Hex(), got, err)
	}
}

func TestConvexHull_TooFewPoints(t *testing.T) {
	p, q := Pt(0, 0), Pt(1, 1)
	for _, pts := range [][]Point{nil, {}, {p}, {p, q}} {
		if hull := ConvexHull(pts); hull != nil {
			t.Errorf("ConvexHull(%v) = %v, want nil", pts, hull)
		}
	}
}

func TestConvexHull_Collinear(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(1, 1), Pt(2, 2), Pt(3, 3)}
	if hull := ConvexHull(pts); hull != nil {
		t.Errorf("ConvexHull(collinear) = %v, want nil", hull)
	}
}

func TestConvexHull_SquareAnyOrder(t *testing.T) {
	corners := []Point{Pt(75, 75), Pt(125, 75), Pt(125, 125), Pt(75, 125)}
	orders := [][]int{
		{0, 1, 2, 3},
		{2, 0, 3, 1},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
	}
	for _, order := range orders {
		pts := make([]Point, len(order))
		for i, idx := range order {
			pts[i] = corners[idx]
		}
		hull := ConvexHull(pts)
		if len(hull) != 4 {
			t.Fatalf("ConvexHull(%v) = %v, want 4 points", pts, hull)
		}
		if !samePerimeter(hull, corners) {
			t.Errorf("ConvexHull(%v) = %v, not in perimeter order", pts, hull)
		}
	}
}

func TestConvexHull_DropsInteriorPoints(t *testing.T) {
	pts := []Point{
		Pt(0, 0), Pt(10, 0), Pt(5, 5), Pt(10, 10), Pt(0, 10), Pt(5, 0), Pt(3, 7),
	}
	hull := ConvexHull(pts)
	want := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if len(hull) != len(want) {
		t.Fatalf("ConvexHull = %v, want %v", hull, want)
	}
	for i := range want {
		if hull[i] != want[i] {
			t.Fatalf("ConvexHull = %v, want %v", hull, want)
		}
	}
}

// samePerimeter reports whether got visits the ring want in order, allowing
// any starting point and either direction.
func samePerimeter(got, want []Point) bool {
	n := len(want)
	if len(got) != n {
		return false
	}
	for start := 0; start < n; start++ {
		for _, dir := range []int{1, -1} {
			ok := true
			for i := 0; i < n; i++ {
				if got[i] != want[((start+dir*i)%n+n)%n] {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
	}
	return false
}

func TestLocalFrame_UndoesPlacement(t *testing.T) {
	origin := Pt(100, 50)
	angle := 45.0
	local := Pt(10, -20)
	x, y := Rotate(local.X, local.Y, angle)
	world := Pt(x+origin.X, y+origin.Y)

	got := LocalFrame(origin, angle).Apply(world)
	if !near(got.X, local.X) || !near(got.Y, local.Y) {
		t.Errorf("LocalFrame.Apply(%v) = %v, want %v", world, got, local)
	}
}

func TestDeviceTransform(t *testing.T) {
	m := DeviceTransform(800, 600)
	tests := []struct{ in, want Point }{
		{Pt(0, 0), Pt(-1, -1)},
		{Pt(800, 600), Pt(1, 1)},
		{Pt(400, 300), Pt(0, 0)},
		{Pt(200, 450), Pt(-0.5, 0.5)},
	}
	for _, tt := range tests {
		got := m.Apply(tt.in)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("DeviceTransform.Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatrix_Invert(t *testing.T) {
	m := Translate(3, 4).Multiply(RotateDegrees(30)).Multiply(Scale(2, 5))
	got := m.Multiply(m.Invert())
	id := Identity()
	for i := range got {
		if !near(got[i], id[i]) {
			t.Fatalf("m*inv(m) = %v, want identity", got)
		}
	}
}

func TestBounds(t *testing.T) {
	r := Bounds([]Point{Pt(3, 4), Pt(-1, 10), Pt(5, -2)})
	want := Rect{X: -1, Y: -2, Width: 6, Height: 12}
	if r != want {
		t.Errorf("Bounds = %+v, want %+v", r, want)
	}
	if !r.Contains(0, 0) || r.Contains(6, 0) {
		t.Errorf("Contains gave wrong answer for %+v", r)
	}
}
