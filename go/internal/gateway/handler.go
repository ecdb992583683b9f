package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/econlabs/growthgame/go/internal/game/commands"
	"github.com/econlabs/growthgame/go/internal/game/events"
)

// Coordinator is what the gateway needs from the game session.
type Coordinator interface {
	CreateGame() error
	SetManualStart(enabled bool) error
	StartGame() error
	ForceEnd() error
	Join(name, connID string) error
	Reconnect(name, connID string) error
	Release(connID string)
	SubmitInvestment(connID string, amount float64, autoSubmit bool) error
	StudentList(connID string)
}

// SessionHandler glues WebSocket traffic to the game coordinator: it upgrades
// connections into audience rooms, decodes inbound commands, and converts
// handler failures into error notifications instead of crashes.
type SessionHandler struct {
	manager     *ConnectionManager
	coordinator Coordinator
	clock       clockwork.Clock
}

// NewSessionHandler wires a handler into the connection manager's dispatch
// path. The clock stamps the error events the handler builds itself, so every
// envelope on the wire shares one time source.
func NewSessionHandler(manager *ConnectionManager, coordinator Coordinator, clock clockwork.Clock) *SessionHandler {
	h := &SessionHandler{
		manager:     manager,
		coordinator: coordinator,
		clock:       clock,
	}
	manager.SetDispatcher(h)
	return h
}

// HandleConnection upgrades an HTTP request into one of the three audience
// rooms, chosen by the role query parameter.
func (h *SessionHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	audience, ok := parseRole(r.URL.Query().Get("role"))
	if !ok {
		http.Error(w, "role must be player, screen, or instructor", http.StatusBadRequest)
		return
	}

	if _, err := h.manager.UpgradeConnection(w, r, audience); err != nil {
		log.Error().Err(err).Str("role", string(audience)).Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleStats reports per-audience connection counts.
func (h *SessionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.manager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

// HandleMessage decodes and applies one inbound command. Unexpected panics
// inside a command handler are caught here, logged, and answered with a
// generic error so the process never dies on a bad message.
func (h *SessionHandler) HandleMessage(conn *Connection, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("connection_id", conn.ID).Msg("command handler panicked")
			h.sendError(conn, "internal server error")
		}
	}()

	cmd, err := commands.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ID).Msg("rejected inbound message")
		h.sendError(conn, "malformed command")
		return
	}

	switch c := cmd.(type) {
	case commands.CreateGame:
		h.reportError(conn, h.coordinator.CreateGame())
	case commands.SetManualStart:
		h.reportError(conn, h.coordinator.SetManualStart(c.Enabled))
	case commands.StartGame:
		h.reportError(conn, h.coordinator.StartGame())
	case commands.ForceEndGame:
		h.reportError(conn, h.coordinator.ForceEnd())
	case commands.JoinGame:
		// The coordinator answers with join_ack either way.
		_ = h.coordinator.Join(c.PlayerName, conn.ID)
	case commands.ReconnectGame:
		_ = h.coordinator.Reconnect(c.PlayerName, conn.ID)
	case commands.SubmitInvestment:
		h.reportError(conn, h.coordinator.SubmitInvestment(conn.ID, c.Investment, c.AutoSubmit))
	case commands.GetStudentList:
		h.coordinator.StudentList(conn.ID)
	default:
		// commands.Decode only produces the closed set above.
		h.sendError(conn, "unsupported command")
	}
}

// HandleDisconnect releases the player identity behind a closed connection.
func (h *SessionHandler) HandleDisconnect(conn *Connection) {
	h.coordinator.Release(conn.ID)
}

func (h *SessionHandler) reportError(conn *Connection, err error) {
	if err == nil {
		return
	}
	log.Debug().Err(err).Str("connection_id", conn.ID).Msg("command rejected")
	h.sendError(conn, err.Error())
}

func (h *SessionHandler) sendError(conn *Connection, message string) {
	event, err := events.New(events.TypeError, events.ErrorPayload{Message: message}, h.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to build error event")
		return
	}
	h.manager.Send(conn.ID, event)
}

func parseRole(role string) (events.Audience, bool) {
	switch role {
	case "player", "":
		return events.AudiencePlayers, true
	case "screen":
		return events.AudienceScreens, true
	case "instructor":
		return events.AudienceInstructor, true
	default:
		return "", false
	}
}
