package render

// Region says which part of a shape a hit pixel belongs to.
type Region uint8

const (
	RegionBody   Region = 0 // drag translates the shape
	RegionHandle Region = 1 // drag moves a vertex
)

func (r Region) String() string {
	if r == RegionHandle {
		return "handle"
	}
	return "body"
}

// MaxShapeID is the largest id the hit surface can encode.
const MaxShapeID = 0xffff

// Pick is a decoded hit-surface pixel. ShapeID 0 means background or a
// decoration; both select nothing.
type Pick struct {
	ShapeID int    `json:"shapeId"`
	Region  Region `json:"region"`
}

// Hit reports whether the pick landed on a shape.
func (p Pick) Hit() bool { return p.ShapeID != 0 }

// EncodeHit returns the flat hit color for a shape id and region: the
// region in red, the id high byte in green and the id low byte in blue.
func EncodeHit(id int, region Region) [4]float32 {
	if id < 0 || id > MaxShapeID {
		id = 0
	}
	return [4]float32{
		float32(region) / 255,
		float32(id>>8&0xff) / 255,
		float32(id&0xff) / 255,
		1,
	}
}

// DecodePick reads a hit-surface pixel.
func DecodePick(px [4]uint8) Pick {
	id := int(px[2]) + 256*int(px[1])
	if id == 0 {
		return Pick{}
	}
	return Pick{ShapeID: id, Region: Region(px[0])}
}
