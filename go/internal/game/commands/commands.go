package commands

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies an inbound client command.
type Type string

const (
	TypeCreateGame       Type = "create_game"
	TypeSetManualStart   Type = "set_manual_start"
	TypeStartGame        Type = "start_game"
	TypeForceEndGame     Type = "force_end_game"
	TypeJoinGame         Type = "join_game"
	TypeReconnectGame    Type = "reconnect_game"
	TypeSubmitInvestment Type = "submit_investment"
	TypeGetStudentList   Type = "get_student_list"
)

// ErrUnknownType is returned for a command type outside the closed set.
var ErrUnknownType = errors.New("unknown command type")

// Envelope is the wire shape of every inbound message.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Command is the closed union of inbound commands. Exactly the types in this
// package implement it.
type Command interface {
	CommandType() Type
}

type CreateGame struct{}

type SetManualStart struct {
	Enabled bool `json:"enabled"`
}

type StartGame struct{}

type ForceEndGame struct{}

type JoinGame struct {
	PlayerName string `json:"player_name"`
}

type ReconnectGame struct {
	PlayerName string `json:"player_name"`
}

type SubmitInvestment struct {
	Investment float64 `json:"investment"`
	AutoSubmit bool    `json:"auto_submit,omitempty"`
}

type GetStudentList struct{}

func (CreateGame) CommandType() Type       { return TypeCreateGame }
func (SetManualStart) CommandType() Type   { return TypeSetManualStart }
func (StartGame) CommandType() Type        { return TypeStartGame }
func (ForceEndGame) CommandType() Type     { return TypeForceEndGame }
func (JoinGame) CommandType() Type         { return TypeJoinGame }
func (ReconnectGame) CommandType() Type    { return TypeReconnectGame }
func (SubmitInvestment) CommandType() Type { return TypeSubmitInvestment }
func (GetStudentList) CommandType() Type   { return TypeGetStudentList }

// Decode parses a raw client message into a typed command.
func Decode(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal command envelope: %w", err)
	}

	decode := func(dst any) error {
		if len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return nil
	}

	switch env.Type {
	case TypeCreateGame:
		return CreateGame{}, nil
	case TypeSetManualStart:
		var cmd SetManualStart
		if err := decode(&cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case TypeStartGame:
		return StartGame{}, nil
	case TypeForceEndGame:
		return ForceEndGame{}, nil
	case TypeJoinGame:
		var cmd JoinGame
		if err := decode(&cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case TypeReconnectGame:
		var cmd ReconnectGame
		if err := decode(&cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case TypeSubmitInvestment:
		var cmd SubmitInvestment
		if err := decode(&cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case TypeGetStudentList:
		return GetStudentList{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}
