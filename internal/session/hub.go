package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks live sessions so they can be counted and closed on shutdown.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // sessionID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	stopped    bool           // guarded by mu
	live       sync.WaitGroup // sessions whose ReadPump has not returned; Add under mu
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Register adds a session. When it returns true the caller must run the
// client's ReadPump; false means the hub is stopping and the connection has
// been closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return false
	}
	h.live.Add(1)
	h.mu.Unlock()

	select {
	case h.register <- client:
	case <-h.done:
		client.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	return true
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every session and waits for them to save their bound
// drawings, or for ctx to end.
func (h *Hub) Stop(ctx context.Context) {
	h.stopOnce.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	h.stopped = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		go c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}

	drained := make(chan struct{})
	go func() {
		h.live.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		slog.Warn("sessions still open at shutdown", "error", ctx.Err())
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		go client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.clients[client.SessionID] = client
	h.mu.Unlock()

	slog.Info("session opened", "session", client.SessionID, "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.SessionID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.SessionID)
	close(client.send)
	h.mu.Unlock()

	slog.Info("session closed", "session", client.SessionID, "user", client.UserID)
}
