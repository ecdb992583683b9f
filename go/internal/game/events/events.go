package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the wire envelope for every coordinator-to-client notification.
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Type identifies an outbound notification.
type Type string

const (
	TypeJoinAck            Type = "join_ack"
	TypeGameCreated        Type = "game_created"
	TypeManualStartMode    Type = "manual_start_mode"
	TypeGameStarted        Type = "game_started"
	TypePlayerJoined       Type = "player_joined"
	TypePlayerDisconnected Type = "player_disconnected"
	TypeRoundStart         Type = "round_start"
	TypeTimerUpdate        Type = "timer_update"
	TypeInvestmentReceived Type = "investment_received"
	TypeAllSubmitted       Type = "all_submitted"
	TypeRoundSummary       Type = "round_summary"
	TypeGameOver           Type = "game_over"
	TypeStateSnapshot      Type = "state_snapshot"
	TypeError              Type = "error"
	TypeStudentList        Type = "student_list"
)

// Audience names a multicast group of connections.
type Audience string

const (
	AudiencePlayers    Audience = "players"
	AudienceScreens    Audience = "screens"
	AudienceInstructor Audience = "instructor"
)

// New wraps a typed payload in an envelope. The payload must be JSON
// marshalable; a failure here is a programming error in the caller.
func New(typ Type, payload any, now time.Time) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		data = b
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: now,
		Data:      data,
	}, nil
}

// ParsePayload decodes the envelope data into the payload struct for its type.
func ParsePayload(event *Event) (any, error) {
	decode := func(dst any) (any, error) {
		if err := json.Unmarshal(event.Data, dst); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return dst, nil
	}

	switch event.Type {
	case TypeJoinAck:
		return decode(&JoinAckPayload{})
	case TypeGameCreated:
		return decode(&GameCreatedPayload{})
	case TypeManualStartMode:
		return decode(&ManualStartModePayload{})
	case TypeGameStarted:
		return &GameStartedPayload{}, nil
	case TypePlayerJoined:
		return decode(&PlayerJoinedPayload{})
	case TypePlayerDisconnected:
		return decode(&PlayerDisconnectedPayload{})
	case TypeRoundStart:
		return decode(&RoundStartPayload{})
	case TypeTimerUpdate:
		return decode(&TimerUpdatePayload{})
	case TypeInvestmentReceived:
		return decode(&InvestmentReceivedPayload{})
	case TypeAllSubmitted:
		return decode(&AllSubmittedPayload{})
	case TypeRoundSummary:
		return decode(&RoundSummaryPayload{})
	case TypeGameOver:
		return decode(&GameOverPayload{})
	case TypeStateSnapshot:
		return decode(&StateSnapshotPayload{})
	case TypeError:
		return decode(&ErrorPayload{})
	case TypeStudentList:
		return decode(&StudentListPayload{})
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}
