package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler upgrades /posts/live requests and attaches them to the hub.
type Handler struct {
	Hub      *Hub
	Upgrader websocket.Upgrader
}

// NewHandler accepts browser connections from allowedOrigins only. Requests
// without an Origin header are always accepted.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &Handler{
		Hub: hub,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	cl := h.Hub.add(conn)
	log.Printf("[WS] Client %d subscribed to live posts", cl.id)

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump only services control frames. The feed is read-only, so any
// data frames are discarded.
func (h *Handler) readPump(cl *client) {
	defer func() {
		h.Hub.remove(cl)
		log.Printf("[WS] Client %d disconnected", cl.id)
	}()

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Client %d closed unexpectedly: %v", cl.id, err)
			}
			return
		}
	}
}

func (h *Handler) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-cl.events:
			if err := cl.writeJSON(event); err != nil {
				h.Hub.remove(cl)
				return
			}
		case <-ticker.C:
			if err := cl.writeControl(websocket.PingMessage, nil); err != nil {
				h.Hub.remove(cl)
				return
			}
		case <-cl.done:
			return
		}
	}
}
