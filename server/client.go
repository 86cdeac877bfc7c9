package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/loophq/go-chat-server/chat"
	"github.com/loophq/go-chat-server/registry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxFrameSize   = 4096
	sendBufferSize = 256
)

// client is one live websocket connection. Outbound frames go through the
// buffered send channel; a full buffer drops the frame rather than blocking
// the coordinator (delivery is best-effort, fire-and-forget).
type client struct {
	connectionID string
	conn         *websocket.Conn
	send         chan []byte
	addr         string
	closed       bool // guarded by the manager lock
}

func newClient(connectionID string, conn *websocket.Conn, addr string) *client {
	conn.SetReadLimit(maxFrameSize)
	return &client{
		connectionID: connectionID,
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		addr:         addr,
	}
}

// clientManager maps connection IDs to transports and implements the
// coordinator's Emitter.
type clientManager struct {
	lock    sync.RWMutex
	clients map[string]*client
}

var _ chat.Emitter = (*clientManager)(nil)

func newClientManager() *clientManager {
	return &clientManager{clients: make(map[string]*client)}
}

func (m *clientManager) add(c *client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[c.connectionID] = c
}

// remove unregisters the connection and closes its send channel. The channel
// is closed after releasing the lock; Emit can no longer reach the client
// once it has left the map.
func (m *clientManager) remove(connectionID string) {
	m.lock.Lock()
	c, ok := m.clients[connectionID]
	if !ok {
		m.lock.Unlock()
		return
	}
	c.closed = true
	delete(m.clients, connectionID)
	m.lock.Unlock()

	close(c.send)
}

// Emit marshals the event into a frame and hands it to the connection's send
// buffer. Returns false when the connection is gone or its buffer is full.
func (m *clientManager) Emit(connectionID, event string, data any) bool {
	frame, err := marshalFrame(event, data)
	if err != nil {
		log.Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return false
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	c, ok := m.clients[connectionID]
	if !ok || c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		log.Warn().Str("connection", connectionID).Str("event", event).Msg("send buffer full; frame dropped")
		return false
	}
}

// Close shuts the connection down gracefully: the client leaves the map and
// its send channel is closed, so the write pump drains any buffered frames,
// writes the close message, and tears down the transport. The read pump then
// runs the normal disconnect path.
func (m *clientManager) Close(connectionID string) {
	m.remove(connectionID)
}

// CloseAll force-closes every live transport; used on server shutdown.
func (m *clientManager) CloseAll() {
	m.lock.RLock()
	all := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		all = append(all, c)
	}
	m.lock.RUnlock()

	for _, c := range all {
		_ = c.conn.Close()
	}
}

func marshalFrame(event string, data any) ([]byte, error) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(chat.Envelope{Event: event, Data: rawData})
}

// readPump consumes inbound frames for the connection's lifetime and drives
// the disconnect path when the transport dies. Runs in its own goroutine; it
// is the only reader of the connection.
func (c *client) readPump(s *Server, session *registry.Session) {
	defer func() {
		s.clients.remove(c.connectionID)
		s.coordinator.Disconnect(c.connectionID)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Str("remote", c.addr).Err(err).Msg("unexpected websocket close")
			}
			return
		}
		s.coordinator.HandleFrame(context.Background(), session, raw)
	}
}

// writePump flushes the send buffer to the transport and keeps the
// connection alive with pings. The only writer of the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
