package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 32
)

// Conn wraps a websocket connection with a buffered outbound queue so
// hub fan-out never blocks on a slow client.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConn(ws *websocket.Conn) *Conn {
	c := &Conn{ws: ws, send: make(chan []byte, sendBufferSize)}
	go c.writePump()
	return c
}

// Enqueue hands a frame to the write pump. Returns false when the
// connection is closed or the buffer is full.
func (c *Conn) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close stops the write pump and closes the socket. Safe to call more
// than once.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

// ReadJSON blocks on the next inbound frame.
func (c *Conn) ReadJSON(v any) error { return c.ws.ReadJSON(v) }

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub is the process-local registry of live connections, grouped by
// room code and by player within the room. Store I/O never happens
// inside its lock.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[uuid.UUID]map[*Conn]struct{}
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[uuid.UUID]map[*Conn]struct{})}
}

// Connect registers conn under (room, player).
func (h *Hub) Connect(conn *Conn, roomCode string, playerID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	players, ok := h.rooms[roomCode]
	if !ok {
		players = make(map[uuid.UUID]map[*Conn]struct{})
		h.rooms[roomCode] = players
	}
	conns, ok := players[playerID]
	if !ok {
		conns = make(map[*Conn]struct{})
		players[playerID] = conns
	}
	conns[conn] = struct{}{}
}

// Disconnect removes conn from (room, player); a nil player id removes
// it from every bucket in the room. Empty buckets are pruned.
func (h *Hub) Disconnect(conn *Conn, roomCode string, playerID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	players, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	if playerID != uuid.Nil {
		h.removeLocked(players, playerID, conn)
	} else {
		for id := range players {
			h.removeLocked(players, id, conn)
		}
	}
	if len(players) == 0 {
		delete(h.rooms, roomCode)
	}
}

func (h *Hub) removeLocked(players map[uuid.UUID]map[*Conn]struct{}, playerID uuid.UUID, conn *Conn) {
	conns, ok := players[playerID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(players, playerID)
	}
}

// Broadcast fans event out to every connection in the room. The target
// list is snapshotted under the lock and sends happen outside it; a
// failed send detaches the connection silently.
func (h *Hub) Broadcast(roomCode string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] marshal broadcast: %v", err)
		return
	}
	for _, conn := range h.snapshot(roomCode, uuid.Nil) {
		if !conn.Enqueue(data) {
			h.Disconnect(conn, roomCode, uuid.Nil)
			conn.Close()
		}
	}
}

// SendToPlayer delivers event to every connection of one player.
func (h *Hub) SendToPlayer(roomCode string, playerID uuid.UUID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] marshal send: %v", err)
		return
	}
	for _, conn := range h.snapshot(roomCode, playerID) {
		if !conn.Enqueue(data) {
			h.Disconnect(conn, roomCode, playerID)
			conn.Close()
		}
	}
}

func (h *Hub) snapshot(roomCode string, playerID uuid.UUID) []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	players, ok := h.rooms[roomCode]
	if !ok {
		return nil
	}
	var out []*Conn
	if playerID != uuid.Nil {
		for conn := range players[playerID] {
			out = append(out, conn)
		}
		return out
	}
	for _, conns := range players {
		for conn := range conns {
			out = append(out, conn)
		}
	}
	return out
}
