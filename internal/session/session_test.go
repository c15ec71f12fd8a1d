package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/webcad/webcad/backend-go/internal/document"
	"github.com/webcad/webcad/backend-go/internal/drawing"
	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/render"
)

type fakeTokens struct{}

func (fakeTokens) ValidateToken(token string) (string, error) {
	if token != "good" {
		return "", errors.New("bad token")
	}
	return "user_a", nil
}

type fakeDrawings struct {
	mu    sync.Mutex
	docs  map[string][][]byte
	saved chan int
}

func newFakeDrawings() *fakeDrawings {
	return &fakeDrawings{
		docs:  map[string][][]byte{"draw_1": {document.Sample()}},
		saved: make(chan int, 8),
	}
}

func (f *fakeDrawings) Latest(_ context.Context, drawingID, userID string) (*drawing.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions, ok := f.docs[drawingID]
	if !ok {
		return nil, drawing.ErrNotFound
	}
	if userID != "user_a" {
		return nil, drawing.ErrForbidden
	}
	return &drawing.Snapshot{Version: len(versions), Document: versions[len(versions)-1]}, nil
}

func (f *fakeDrawings) Save(_ context.Context, drawingID, _ string, data []byte) (*drawing.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[drawingID] = append(f.docs[drawingID], data)
	v := len(f.docs[drawingID])
	f.saved <- v
	return &drawing.Snapshot{Version: v}, nil
}

func newTestServer(t *testing.T, store *fakeDrawings) (*httptest.Server, *Hub) {
	t.Helper()
	opts := editor.DefaultOptions()
	opts.Width, opts.Height = 400, 300
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(NewHandler(hub, store, fakeTokens{}, opts, nil))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.Stop(ctx)
		srv.Close()
	})
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+query, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, seq int64, payload any) {
	t.Helper()
	msg := Message{Type: typ, Seq: seq}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		msg.Payload = data
	}
	data, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatal(err)
	}
}

// expect reads until a message of the given type arrives.
func expect(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == typ {
			return msg
		}
		if msg.Type == TypeError {
			t.Fatalf("waiting for %s: got error %s", typ, msg.Payload)
		}
	}
}

func TestAnonymousSession(t *testing.T) {
	srv, hub := newTestServer(t, newFakeDrawings())
	conn := dial(t, srv, "/")

	var welcome WelcomePayload
	json.Unmarshal(expect(t, conn, TypeWelcome).Payload, &welcome)
	if welcome.Width != 400 || welcome.Height != 300 || welcome.DrawingID != "" {
		t.Errorf("welcome = %+v", welcome)
	}
	if !strings.HasPrefix(welcome.SessionID, "sess_") {
		t.Errorf("session id = %q", welcome.SessionID)
	}
	if hub.Len() != 1 {
		t.Errorf("hub has %d sessions", hub.Len())
	}

	send(t, conn, TypeModeSet, 1, ModePayload{Mode: "rectangle"})
	expect(t, conn, TypeState)
	send(t, conn, TypePointerDown, 2, PointerPayload{X: 100, Y: 100})
	send(t, conn, TypePointerMove, 3, PointerPayload{X: 200, Y: 160})
	send(t, conn, TypePointerUp, 4, PointerPayload{X: 200, Y: 160})

	send(t, conn, TypeTick, 5, nil)
	var frame render.Frame
	if err := json.Unmarshal(expect(t, conn, TypeFrame).Payload, &frame); err != nil {
		t.Fatal(err)
	}
	if len(frame.Visible.Commands) != 1 || frame.Visible.Commands[0].ShapeID != 1 {
		t.Errorf("frame commands = %+v", frame.Visible.Commands)
	}

	send(t, conn, TypePick, 6, PointerPayload{X: 150, Y: 130})
	var hit PickPayload
	json.Unmarshal(expect(t, conn, TypePick).Payload, &hit)
	if hit.ShapeID != 1 || hit.Region != "body" {
		t.Errorf("pick inside rectangle = %+v", hit)
	}
	send(t, conn, TypePick, 7, PointerPayload{X: 20, Y: 20})
	json.Unmarshal(expect(t, conn, TypePick).Payload, &hit)
	if hit.ShapeID != 0 {
		t.Errorf("pick on background = %+v", hit)
	}

	send(t, conn, TypeDocSave, 8, nil)
	var doc DocLoadPayload
	json.Unmarshal(expect(t, conn, TypeDocSync).Payload, &doc)
	var records []document.Record
	if err := json.Unmarshal(doc.Document, &records); err != nil || len(records) != 1 || records[0].Kind != "rectangle" {
		t.Errorf("saved drawing = %s", doc.Document)
	}
}

func TestSessionAttributes(t *testing.T) {
	srv, _ := newTestServer(t, newFakeDrawings())
	conn := dial(t, srv, "/")
	expect(t, conn, TypeWelcome)

	send(t, conn, TypeAttrSet, 1, AttrPayload{Scope: ScopeCreate, Kind: "polygon", ID: "create-sides", Value: "7"})
	var attrs []map[string]string
	json.Unmarshal(expect(t, conn, TypeAttributes).Payload, &attrs)
	if len(attrs) == 0 || attrs[0]["id"] != "create-sides" || attrs[0]["value"] != "7" {
		t.Errorf("create attributes = %v", attrs)
	}

	send(t, conn, TypeAttrSet, 2, AttrPayload{Scope: ScopeCreate, Kind: "polygon", ID: "create-sides", Value: "two"})
	var e ErrorPayload
	msg := expect(t, conn, TypeError)
	json.Unmarshal(msg.Payload, &e)
	if msg.Seq != 2 || e.Request != TypeAttrSet {
		t.Errorf("error = %+v seq %d", e, msg.Seq)
	}
}

func TestSessionErrors(t *testing.T) {
	srv, _ := newTestServer(t, newFakeDrawings())
	conn := dial(t, srv, "/")
	expect(t, conn, TypeWelcome)

	tests := []struct {
		typ     string
		payload any
	}{
		{"teleport", nil},
		{TypeModeSet, ModePayload{Mode: "lasso"}},
		{TypePolygonFinish, nil},
		{TypePolygonHull, nil},
		{TypeDocLoad, DocLoadPayload{Document: json.RawMessage(`[{"id":1,"kind":"blob"}]`)}},
	}
	for i, tt := range tests {
		send(t, conn, tt.typ, int64(i+1), tt.payload)
		msg := expect(t, conn, TypeError)
		if msg.Seq != int64(i+1) {
			t.Errorf("%s: error seq = %d", tt.typ, msg.Seq)
		}
	}
}

func TestLoadNeedsConfirmation(t *testing.T) {
	srv, _ := newTestServer(t, newFakeDrawings())
	conn := dial(t, srv, "/")
	expect(t, conn, TypeWelcome)

	send(t, conn, TypeSampleLoad, 1, nil)
	expect(t, conn, TypeState)

	send(t, conn, TypeDocLoad, 2, DocLoadPayload{Document: json.RawMessage(`[]`)})
	var e ErrorPayload
	json.Unmarshal(expect(t, conn, TypeError).Payload, &e)
	if e.Message != editor.ErrLoadCancelled.Error() {
		t.Errorf("unconfirmed load error = %q", e.Message)
	}

	send(t, conn, TypeDocLoad, 3, DocLoadPayload{Document: json.RawMessage(`[]`), Confirm: true})
	var state map[string]any
	json.Unmarshal(expect(t, conn, TypeState).Payload, &state)
	if state["shapes"] != float64(0) {
		t.Errorf("state after confirmed load = %v", state)
	}
}

func TestBoundSession(t *testing.T) {
	store := newFakeDrawings()
	srv, _ := newTestServer(t, store)
	conn := dial(t, srv, "/?token=good&drawingId=draw_1")

	var welcome WelcomePayload
	json.Unmarshal(expect(t, conn, TypeWelcome).Payload, &welcome)
	if welcome.DrawingID != "draw_1" || welcome.Version != 1 {
		t.Errorf("welcome = %+v", welcome)
	}

	send(t, conn, TypeDocSave, 1, nil)
	var saved DocSavedPayload
	json.Unmarshal(expect(t, conn, TypeDocSaved).Payload, &saved)
	if saved.Version != 2 {
		t.Errorf("saved version = %d", saved.Version)
	}
	<-store.saved

	send(t, conn, TypeModeSet, 2, ModePayload{Mode: "square"})
	expect(t, conn, TypeState)
	send(t, conn, TypePointerDown, 3, PointerPayload{X: 10, Y: 10})
	send(t, conn, TypePointerUp, 4, PointerPayload{X: 30, Y: 30})
	expect(t, conn, TypeSelection)
	expect(t, conn, TypeSelection)
	conn.Close(websocket.StatusNormalClosure, "")

	select {
	case v := <-store.saved:
		if v != 3 {
			t.Errorf("autosaved version = %d", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not autosave on close")
	}
}

func TestRejectedSessions(t *testing.T) {
	srv, _ := newTestServer(t, newFakeDrawings())
	tests := []struct {
		query string
		want  int
	}{
		{"/?drawingId=draw_1", http.StatusUnauthorized},
		{"/?token=bad", http.StatusUnauthorized},
		{"/?token=good&drawingId=draw_9", http.StatusNotFound},
	}
	for _, tt := range tests {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+tt.query, nil)
		cancel()
		if err == nil || resp == nil || resp.StatusCode != tt.want {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			t.Errorf("%s: status = %d, want %d", tt.query, status, tt.want)
		}
	}
}

func TestHubStop(t *testing.T) {
	store := newFakeDrawings()
	srv, hub := newTestServer(t, store)
	conn := dial(t, srv, "/?token=good&drawingId=draw_1")
	expect(t, conn, TypeWelcome)
	send(t, conn, TypeModeSet, 1, ModePayload{Mode: "square"})
	expect(t, conn, TypeState)
	send(t, conn, TypePointerDown, 2, PointerPayload{X: 10, Y: 10})
	send(t, conn, TypePointerUp, 3, PointerPayload{X: 30, Y: 30})
	expect(t, conn, TypeSelection)
	expect(t, conn, TypeSelection)

	// Sessions opening while the hub stops are either drained or refused.
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			c, _, err := websocket.Dial(ctx, url, nil)
			if err != nil {
				return
			}
			defer c.CloseNow()
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Stop(ctx)
	if ctx.Err() != nil {
		t.Fatal("Stop did not drain sessions")
	}
	select {
	case v := <-store.saved:
		if v != 2 {
			t.Errorf("autosaved version = %d", v)
		}
	default:
		t.Error("Stop returned before the bound session saved")
	}
	wg.Wait()
	if n := hub.Len(); n != 0 {
		t.Errorf("Len after Stop = %d", n)
	}

	late := dial(t, srv, "/")
	readCtx, readCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readCancel()
	_, _, err := late.Read(readCtx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("session opened after Stop: read error = %v", err)
	}
}
