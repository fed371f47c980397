package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"pointsgame/events"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	clientBuffer = 32
)

// LiveMessage is one domain event as streamed to admin dashboards
type LiveMessage struct {
	Type    events.EventType `json:"type"`
	At      time.Time        `json:"at"`
	Payload events.Event     `json:"payload"`
}

type liveClient struct {
	conn      *websocket.Conn
	send      chan []byte
	accountID uuid.UUID
	closeOnce sync.Once
}

func (c *liveClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// LiveHub fans committed bus events out to connected websocket clients.
// A client that cannot keep up is disconnected rather than blocking the bus.
type LiveHub struct {
	mu       sync.Mutex
	clients  map[*liveClient]struct{}
	upgrader websocket.Upgrader
	closed   bool
}

// NewLiveHub creates an empty hub
func NewLiveHub() *LiveHub {
	return &LiveHub{
		clients: make(map[*liveClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Attach subscribes the hub to every event type on bus
func (h *LiveHub) Attach(bus *events.Bus) {
	bus.SubscribeAll(h.Handle)
}

// Handle broadcasts one event to every connected client
func (h *LiveHub) Handle(ctx context.Context, event events.Event) {
	data, err := json.Marshal(LiveMessage{
		Type:    event.Type(),
		At:      time.Now().UTC(),
		Payload: event,
	})
	if err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Warn("Failed to marshal live event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.WithField("account_id", client.accountID).Warn("Live client too slow, disconnecting")
			delete(h.clients, client)
			client.close()
		}
	}
}

// Len returns the number of connected clients
func (h *LiveHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events until the client goes away
func (h *LiveHub) Serve(w http.ResponseWriter, r *http.Request, accountID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("Live feed upgrade failed")
		return
	}

	client := &liveClient{
		conn:      conn,
		send:      make(chan []byte, clientBuffer),
		accountID: accountID,
	}
	if !h.register(client) {
		conn.Close()
		return
	}

	log.WithField("account_id", accountID).Info("Live feed client connected")
	go h.writePump(client)
	h.readPump(client)
}

func (h *LiveHub) register(client *liveClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	return true
}

func (h *LiveHub) unregister(client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
}

// readPump discards client messages and watches for pongs and disconnects
func (h *LiveHub) readPump(client *liveClient) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
		log.WithField("account_id", client.accountID).Info("Live feed client disconnected")
	}()

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveHub) writePump(client *liveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and refuses new ones
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		client.close()
	}
}
