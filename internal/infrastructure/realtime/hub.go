// Package realtime broadcasts canonical item snapshots to websocket clients.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

// Hub fans item snapshots out to connected websocket clients. Clients are
// read-only; the hub never consumes inbound frames beyond control messages.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and registers the client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain reads so pings and close frames are processed. Any read error
	// means the client is gone.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ItemMessage is the wire envelope for snapshot broadcasts.
type ItemMessage struct {
	Kind string                    `json:"kind"`
	Item *scheduling.ScheduledItem `json:"item,omitempty"`
	ID   string                    `json:"id,omitempty"`
}

// BroadcastItem pushes an updated item snapshot to every connected client.
// Clients that fail to accept the write are dropped.
func (h *Hub) BroadcastItem(item scheduling.ScheduledItem) {
	h.broadcast(ItemMessage{Kind: "item", Item: &item})
}

// BroadcastRemoval tells clients an item no longer exists.
func (h *Hub) BroadcastRemoval(itemID string) {
	h.broadcast(ItemMessage{Kind: "removed", ID: itemID})
}

func (h *Hub) broadcast(msg ItemMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conn)
		}
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
