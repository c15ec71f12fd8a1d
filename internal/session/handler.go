// Package session serves interactive editing sessions over websockets. Each
// connection drives its own editor on software surfaces; pointer events go
// in and frames, selections and attribute forms come back.
package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/webcad/webcad/backend-go/internal/document"
	"github.com/webcad/webcad/backend-go/internal/drawing"
	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/typeid"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type Handler struct {
	hub     *Hub
	store   DrawingStore
	tokens  TokenValidator
	opts    editor.Options
	origins []string
}

func NewHandler(hub *Hub, store DrawingStore, tokens TokenValidator, opts editor.Options, origins []string) *Handler {
	return &Handler{hub: hub, store: store, tokens: tokens, opts: opts, origins: origins}
}

// ServeHTTP upgrades the request to a session. Without a token the session
// is anonymous and unbound; with a token and a drawingId query parameter it
// edits that drawing's latest snapshot.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	drawingID := r.URL.Query().Get("drawingId")

	var userID string
	token := r.URL.Query().Get("token")
	if token == "" {
		if drawingID != "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID = "anon-" + uuid.New().String()[:8]
	} else {
		var err error
		userID, err = h.tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	ed, _, err := editor.NewRaster(h.opts)
	if err != nil {
		slog.Error("create editor", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	version := 0
	if drawingID != "" {
		snap, err := h.store.Latest(r.Context(), drawingID, userID)
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
			return
		case errors.Is(err, drawing.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		case err != nil:
			slog.Error("load drawing", "error", err, "drawing", drawingID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := ed.Load(snap.Document, nil); err != nil && !errors.Is(err, document.ErrEmpty) {
			slog.Error("decode drawing", "error", err, "drawing", drawingID)
			http.Error(w, "stored drawing is unreadable", http.StatusInternalServerError)
			return
		}
		version = snap.Version
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, ed, h.store, typeid.Session.New(), uuid.New().String(), userID, drawingID)
	if !h.hub.Register(client) {
		return
	}

	client.reply(TypeWelcome, 0, WelcomePayload{
		SessionID: client.SessionID,
		ClientID:  client.ClientID,
		DrawingID: drawingID,
		Version:   version,
		Width:     h.opts.Width,
		Height:    h.opts.Height,
	})

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
