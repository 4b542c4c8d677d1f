package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/blog/backend/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 32
)

// client is one subscriber on the live feed.
type client struct {
	id   uint64
	conn *websocket.Conn

	// writeMu ensures only one goroutine writes to the socket at a time;
	// gorilla connections support a single concurrent writer.
	writeMu sync.Mutex
	events  chan domain.PostEvent
	done    chan struct{}
	once    sync.Once
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) writeControl(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteControl(messageType, data, time.Now().Add(writeWait))
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans post events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*client
	nextID  uint64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint64]*client)}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	c := &client{
		id:     h.nextID,
		conn:   conn,
		events: make(chan domain.PostEvent, sendBuffer),
		done:   make(chan struct{}),
	}
	h.clients[c.id] = c
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

// Publish queues event for every client without blocking. A client whose
// buffer is full is disconnected.
func (h *Hub) Publish(event domain.PostEvent) {
	h.mu.RLock()
	var slow []*client
	for _, c := range h.clients {
		select {
		case c.events <- event:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("[WS] Dropping slow client %d", c.id)
		h.remove(c)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[uint64]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.writeControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		c.close()
	}
}
