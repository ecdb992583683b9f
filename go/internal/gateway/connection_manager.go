package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/econlabs/growthgame/go/internal/game/events"
)

// Dispatcher handles decoded traffic from one connection. The session handler
// implements it.
type Dispatcher interface {
	HandleMessage(conn *Connection, raw []byte)
	HandleDisconnect(conn *Connection)
}

// ConnectionManager owns every WebSocket connection, grouped into the three
// audience rooms, and fans coordinator events out to them.
type ConnectionManager struct {
	audiences map[events.Audience]map[*Connection]bool
	conns     map[string]*Connection
	mu        sync.RWMutex

	upgrader   websocket.Upgrader
	config     ConnectionConfig
	dispatcher Dispatcher

	broadcastCh chan broadcastMessage
}

// Connection represents one WebSocket client.
type Connection struct {
	ID       string
	Audience events.Audience
	Conn     *websocket.Conn
	Send     chan []byte
	Manager  *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	Event     *events.Event
	Audiences []events.Audience
	ConnID    string // if set, send only to this connection
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Classroom deployment sits behind a single origin; restrict if
			// exposed more widely.
			return true
		},
	}
}

// NewConnectionManager creates a connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		audiences: make(map[events.Audience]map[*Connection]bool),
		conns:     make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 256),
	}
}

// SetDispatcher attaches the inbound message handler. Must be called before
// the first upgrade.
func (cm *ConnectionManager) SetDispatcher(d Dispatcher) {
	cm.dispatcher = d
}

// Start processes broadcast messages until the context is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Broadcast queues an event for every connection in the given audiences.
// Part of the game.Notifier contract.
func (cm *ConnectionManager) Broadcast(event *events.Event, audiences ...events.Audience) {
	select {
	case cm.broadcastCh <- broadcastMessage{Event: event, Audiences: audiences}:
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("broadcast channel full, dropping message")
	}
}

// Send queues an event for a single connection. Part of the game.Notifier
// contract; this is the private per-player channel.
func (cm *ConnectionManager) Send(connID string, event *events.Event) {
	select {
	case cm.broadcastCh <- broadcastMessage{Event: event, ConnID: connID}:
	default:
		log.Warn().Str("conn", connID).Str("event_type", string(event.Type)).
			Msg("broadcast channel full, dropping direct message")
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket connection in the
// given audience room. A new instructor connection supersedes any previous
// one, keeping that audience a single seat.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, audience events.Audience) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Audience:    audience,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("audience", string(audience)).
		Msg("WebSocket connection established")
	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	var stale *Connection

	cm.mu.Lock()
	if conn.Audience == events.AudienceInstructor {
		for existing := range cm.audiences[events.AudienceInstructor] {
			stale = existing
		}
	}
	if cm.audiences[conn.Audience] == nil {
		cm.audiences[conn.Audience] = make(map[*Connection]bool)
	}
	cm.audiences[conn.Audience][conn] = true
	cm.conns[conn.ID] = conn
	cm.mu.Unlock()

	if stale != nil {
		log.Info().Str("connection_id", stale.ID).Msg("new instructor supersedes existing connection")
		cm.unregisterConnection(stale)
		stale.Conn.Close()
	}
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if pool, exists := cm.audiences[conn.Audience]; exists {
		if pool[conn] {
			delete(pool, conn)
			close(conn.Send)
			delete(cm.conns, conn.ID)
			log.Info().
				Str("connection_id", conn.ID).
				Str("audience", string(conn.Audience)).
				Msg("connection unregistered")
		}
	}
}

func (cm *ConnectionManager) handleBroadcast(message broadcastMessage) {
	data, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the read lock: unregisterConnection closes Send under
	// the write lock, so a connection cannot be closed out from under an
	// in-flight send.
	var slow []*Connection
	delivered := 0
	deliver := func(conn *Connection) {
		select {
		case conn.Send <- data:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}

	cm.mu.RLock()
	if message.ConnID != "" {
		if conn, ok := cm.conns[message.ConnID]; ok {
			deliver(conn)
		}
	} else {
		for _, audience := range message.Audiences {
			for conn := range cm.audiences[audience] {
				deliver(conn)
			}
		}
	}
	cm.mu.RUnlock()

	// Slow or dead consumers are dropped outside the read lock.
	for _, conn := range slow {
		log.Warn().Str("connection_id", conn.ID).Msg("send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	if delivered > 0 {
		log.Debug().
			Str("event_type", string(message.Event.Type)).
			Int("connections", delivered).
			Msg("event broadcasted")
	}
}

// Stats reports connection counts per audience.
func (cm *ConnectionManager) Stats() map[string]int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := map[string]int{"total": len(cm.conns)}
	for audience, pool := range cm.audiences {
		stats[string(audience)] = len(pool)
	}
	return stats
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
		if c.Manager.dispatcher != nil {
			c.Manager.dispatcher.HandleDisconnect(c)
		}
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close")
			}
			break
		}
		if c.Manager.dispatcher != nil {
			c.Manager.dispatcher.HandleMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
