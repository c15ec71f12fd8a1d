package session

import "encoding/json"

// Message is the envelope for everything sent over a session socket.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypeModeSet       = "mode.set"
	TypeAttrSet       = "attr.set"
	TypeAttrQuery     = "attr.query"
	TypePolygonFinish = "polygon.finish"
	TypePolygonHull   = "polygon.hull"
	TypeDocLoad       = "doc.load"
	TypeDocSave       = "doc.save"
	TypeSampleLoad    = "sample.load"
	TypeTick          = "tick"
	TypePick          = "pick" // also the reply type

	// Server to client
	TypeWelcome    = "welcome"
	TypeFrame      = "frame"
	TypeSelection  = "selection"
	TypeState      = "state"
	TypeAttributes = "attributes"
	TypeDocSync    = "doc.sync"
	TypeDocSaved   = "doc.saved"
	TypeError      = "error"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
	DrawingID string `json:"drawingId,omitempty"`
	Version   int    `json:"version,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// PointerPayload is a pointer position in canvas pixels, origin lower-left.
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PickPayload is what lies under a pointer on the hit surface.
type PickPayload struct {
	ShapeID int    `json:"shapeId"`
	Region  string `json:"region"`
}

type ModePayload struct {
	Mode string `json:"mode"`
}

// Attribute scopes.
const (
	ScopeShape  = "shape"
	ScopeVertex = "vertex"
	ScopeCreate = "create"
)

// AttrPayload edits or queries one sidebar form. X and Y locate the vertex
// for the vertex scope; Kind names the shape kind for the create scope.
type AttrPayload struct {
	Scope string  `json:"scope"`
	Kind  string  `json:"kind,omitempty"`
	ID    string  `json:"id,omitempty"`
	Value string  `json:"value,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
}

// DocLoadPayload carries a drawing to replace the session's scene. A
// non-empty scene is only discarded when Confirm is set.
type DocLoadPayload struct {
	Document json.RawMessage `json:"document"`
	Confirm  bool            `json:"confirm,omitempty"`
}

type DocSavedPayload struct {
	DrawingID string `json:"drawingId,omitempty"`
	Version   int    `json:"version,omitempty"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}
