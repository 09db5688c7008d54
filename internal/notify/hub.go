package notify

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	metricWSClients      = expvar.NewInt("ws_clients")
	metricWSDroppedTotal = expvar.NewInt("ws_dropped_total")
)

const (
	clientSendBuffer = 32
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type envelope struct {
	Event  string `json:"event"`
	RoomID string `json:"room_id,omitempty"`
	Data   any    `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	roomID string
}

// Hub is the websocket Notifier: one subscriber set per room plus a global
// set. A client whose send buffer is full gets the message dropped, not the
// hub stalled; observers are best effort by design.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*client]struct{}
	global map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  map[string]map[*client]struct{}{},
		global: map[*client]struct{}{},
	}
}

func (h *Hub) EmitToRoom(roomID, event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, RoomID: roomID, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal ws event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		c.offer(payload)
	}
	for c := range h.global {
		c.offer(payload)
	}
}

func (h *Hub) EmitGlobal(event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal ws event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.global {
		c.offer(payload)
	}
	for _, room := range h.rooms {
		for c := range room {
			c.offer(payload)
		}
	}
}

func (c *client) offer(payload []byte) {
	select {
	case c.send <- payload:
	default:
		metricWSDroppedTotal.Add(1)
	}
}

// ServeRoom upgrades the request and subscribes the connection to a room's
// events ("" subscribes globally) until the peer goes away.
func (h *Hub) ServeRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer), roomID: roomID}
	h.register(c)
	metricWSClients.Add(1)

	go c.writePump(func() {
		h.unregister(c)
		metricWSClients.Add(-1)
	})
	c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.roomID == "" {
		h.global[c] = struct{}{}
		return
	}
	room, ok := h.rooms[c.roomID]
	if !ok {
		room = map[*client]struct{}{}
		h.rooms[c.roomID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.roomID == "" {
		delete(h.global, c)
		return
	}
	if room, ok := h.rooms[c.roomID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
}

// readPump discards inbound frames; the socket is broadcast-only. It exists
// to process control frames and notice the peer closing.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump(onExit func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		onExit()
	}()
	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
