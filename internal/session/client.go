package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/webcad/webcad/backend-go/internal/drawing"
	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/shape"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 8 << 20
	saveWait   = 10 * time.Second
)

// DrawingStore persists the drawings sessions are bound to.
type DrawingStore interface {
	Latest(ctx context.Context, drawingID, userID string) (*drawing.Snapshot, error)
	Save(ctx context.Context, drawingID, userID string, data []byte) (*drawing.Snapshot, error)
}

// Client is one editing session. The editor is only touched from ReadPump.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	editor *editor.Editor
	store  DrawingStore

	SessionID string
	ClientID  string
	UserID    string
	DrawingID string // empty for anonymous sessions

	modified bool
}

func NewClient(hub *Hub, conn *websocket.Conn, ed *editor.Editor, store DrawingStore, sessionID, clientID, userID, drawingID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		editor:    ed,
		store:     store,
		SessionID: sessionID,
		ClientID:  clientID,
		UserID:    userID,
		DrawingID: drawingID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.autosave()
		c.hub.unregisterClient(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
		c.hub.live.Done()
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", c.SessionID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", c.SessionID)
			c.sendError("", 0, "invalid message")
			continue
		}

		if err := c.handle(ctx, &msg); err != nil {
			slog.Debug("request failed", "type", msg.Type, "error", err, "session", c.SessionID)
			c.sendError(msg.Type, msg.Seq, err.Error())
		}
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", c.SessionID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// handle applies one request to the editor and queues the replies.
func (c *Client) handle(ctx context.Context, msg *Message) error {
	ed := c.editor
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid pointer payload: %w", err)
		}
		switch msg.Type {
		case TypePointerDown:
			ed.PointerDown(p.X, p.Y)
			c.modified = true
			c.reply(TypeSelection, msg.Seq, ed.Selection())
		case TypePointerMove:
			if ed.Dragging() {
				ed.PointerMove(p.X, p.Y)
				c.modified = true
			}
		case TypePointerUp:
			ed.PointerUp(p.X, p.Y)
			c.reply(TypeSelection, msg.Seq, ed.Selection())
		}

	case TypePick:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid pointer payload: %w", err)
		}
		hit := ed.Pick(p.X, p.Y)
		c.reply(TypePick, msg.Seq, PickPayload{ShapeID: hit.ShapeID, Region: hit.Region.String()})

	case TypeModeSet:
		var p ModePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid mode payload: %w", err)
		}
		if !ed.SetMode(editor.Mode(p.Mode)) {
			return fmt.Errorf("unknown mode %q", p.Mode)
		}
		c.reply(TypeState, msg.Seq, json.RawMessage(ed.StateJSON()))

	case TypeAttrQuery, TypeAttrSet:
		var p AttrPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid attribute payload: %w", err)
		}
		if msg.Type == TypeAttrSet {
			if err := c.setAttribute(p); err != nil {
				return err
			}
			c.modified = true
		}
		c.reply(TypeAttributes, msg.Seq, c.attributes(p))

	case TypePolygonFinish:
		if _, ok := ed.FinishPolygon(); !ok {
			return errors.New("need three points that are not collinear")
		}
		c.modified = true
		c.reply(TypeState, msg.Seq, json.RawMessage(ed.StateJSON()))

	case TypePolygonHull:
		if !ed.ToConvexHull() {
			return errors.New("no polygon selected")
		}
		c.modified = true
		c.reply(TypeSelection, msg.Seq, ed.Selection())

	case TypeDocLoad:
		var p DocLoadPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid load payload: %w", err)
		}
		if err := ed.Load(p.Document, func() bool { return p.Confirm }); err != nil {
			return err
		}
		c.modified = true
		c.reply(TypeState, msg.Seq, json.RawMessage(ed.StateJSON()))

	case TypeSampleLoad:
		ed.LoadSample()
		c.modified = true
		c.reply(TypeState, msg.Seq, json.RawMessage(ed.StateJSON()))

	case TypeDocSave:
		return c.save(ctx, msg.Seq)

	case TypeTick:
		if ed.Tick() {
			c.reply(TypeFrame, msg.Seq, ed.Frame())
		}

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (c *Client) setAttribute(p AttrPayload) error {
	switch p.Scope {
	case ScopeShape, "":
		return c.editor.SetAttribute(p.ID, p.Value)
	case ScopeVertex:
		return c.editor.SetVertexAttribute(p.X, p.Y, p.ID, p.Value)
	case ScopeCreate:
		return c.editor.SetCreateAttribute(shape.Kind(p.Kind), p.ID, p.Value)
	}
	return fmt.Errorf("unknown attribute scope %q", p.Scope)
}

func (c *Client) attributes(p AttrPayload) []shape.Attribute {
	var attrs []shape.Attribute
	switch p.Scope {
	case ScopeShape, "":
		attrs = c.editor.Attributes()
	case ScopeVertex:
		attrs = c.editor.VertexAttributes(p.X, p.Y)
	case ScopeCreate:
		attrs = c.editor.CreateAttributes(shape.Kind(p.Kind))
	}
	if attrs == nil {
		attrs = []shape.Attribute{}
	}
	return attrs
}

// save stores the drawing when the session is bound to one; otherwise the
// encoded drawing is sent back for the client to keep.
func (c *Client) save(ctx context.Context, seq int64) error {
	data, err := c.editor.Save()
	if err != nil {
		return err
	}
	if c.DrawingID == "" || c.store == nil {
		c.reply(TypeDocSync, seq, DocLoadPayload{Document: data})
		return nil
	}
	snap, err := c.store.Save(ctx, c.DrawingID, c.UserID, data)
	if err != nil {
		return err
	}
	c.modified = false
	c.reply(TypeDocSaved, seq, DocSavedPayload{DrawingID: c.DrawingID, Version: snap.Version})
	return nil
}

// autosave keeps unsaved edits of a bound drawing when the session ends.
func (c *Client) autosave() {
	if !c.modified || c.DrawingID == "" || c.store == nil {
		return
	}
	data, err := c.editor.Save()
	if err != nil {
		slog.Error("encode drawing", "error", err, "session", c.SessionID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveWait)
	defer cancel()
	snap, err := c.store.Save(ctx, c.DrawingID, c.UserID, data)
	if err != nil {
		slog.Error("autosave failed", "error", err, "session", c.SessionID, "drawing", c.DrawingID)
		return
	}
	slog.Info("autosaved drawing", "drawing", c.DrawingID, "version", snap.Version)
}

func (c *Client) reply(typ string, seq int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", typ)
		return
	}
	c.Send(&Message{Type: typ, SessionID: c.SessionID, Seq: seq, Payload: data})
}

func (c *Client) sendError(request string, seq int64, message string) {
	c.reply(TypeError, seq, ErrorPayload{Request: request, Message: message})
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "session", c.SessionID)
	}
}
