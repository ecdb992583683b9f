package events

import "github.com/econlabs/growthgame/go/internal/models"

// Payload types shared between the game coordinator and the gateway.

// JoinAckPayload answers a join_game or reconnect_game command. On success it
// carries the snapshot a client needs to render its current state.
type JoinAckPayload struct {
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	PlayerName    string  `json:"player_name,omitempty"`
	Reconnect     bool    `json:"reconnect,omitempty"`
	RoundNumber   int     `json:"round_number,omitempty"`
	Capital       float64 `json:"capital,omitempty"`
	Output        float64 `json:"output,omitempty"`
	Submitted     bool    `json:"submitted,omitempty"`
	TimeRemaining int     `json:"time_remaining,omitempty"`
}

// GameCreatedPayload announces a fresh session.
type GameCreatedPayload struct {
	ManualStartEnabled bool `json:"manual_start_enabled"`
}

// ManualStartModePayload announces a change to the manual-start gate.
type ManualStartModePayload struct {
	Enabled bool `json:"enabled"`
}

// GameStartedPayload announces the Idle to Running transition.
type GameStartedPayload struct{}

// PlayerJoinedPayload announces a (re)joined player to screens and instructor.
type PlayerJoinedPayload struct {
	PlayerName  string `json:"player_name"`
	IsReconnect bool   `json:"is_reconnect"`
}

// PlayerDisconnectedPayload announces a dropped player connection.
type PlayerDisconnectedPayload struct {
	PlayerName string `json:"player_name"`
}

// RoundStartPayload announces that a round countdown has begun.
type RoundStartPayload struct {
	RoundNumber   int `json:"round_number"`
	TimeRemaining int `json:"time_remaining"`
}

// TimerUpdatePayload carries one countdown tick.
type TimerUpdatePayload struct {
	TimeRemaining int `json:"time_remaining"`
}

// InvestmentReceivedPayload reports a single submission to the instructor and
// screen audiences. Never sent to players, so peer decisions stay hidden.
type InvestmentReceivedPayload struct {
	PlayerName string  `json:"player_name"`
	Investment float64 `json:"investment"`
	AutoSubmit bool    `json:"auto_submit"`
}

// AllSubmittedPayload signals an early round end with the countdown value at
// the moment the last eligible player submitted.
type AllSubmittedPayload struct {
	TimeRemaining int `json:"time_remaining"`
}

// RoundSummaryPayload carries the settled results of one round.
type RoundSummaryPayload struct {
	RoundNumber int                  `json:"round_number"`
	Results     []models.RoundResult `json:"results"`
}

// GameOverPayload carries the final rankings, sorted by descending output with
// ties broken by ascending player name.
type GameOverPayload struct {
	Results []models.PlayerStanding `json:"results"`
	Winner  string                  `json:"winner"`
}

// StateSnapshotPayload is the private resume message for a reconnecting
// player.
type StateSnapshotPayload struct {
	RoundNumber   int     `json:"round_number"`
	Capital       float64 `json:"capital"`
	Output        float64 `json:"output"`
	Submitted     bool    `json:"submitted"`
	TimeRemaining int     `json:"time_remaining"`
}

// ErrorPayload is a generic error notification to one client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// TeamInfo is one roster team in a student_list payload.
type TeamInfo struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// StudentListPayload answers get_student_list from the class roster.
type StudentListPayload struct {
	AllStudents      []string   `json:"all_students"`
	StudentsInTeams  []string   `json:"students_in_teams"`
	TeamInfo         []TeamInfo `json:"team_info"`
	UnavailableCount int        `json:"unavailable_count"`
}
