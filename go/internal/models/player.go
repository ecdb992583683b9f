package models

// Player is the per-session ledger entry for one student. Players are created
// on first join and never removed while the session lives; a disconnect only
// flips Connected so a later reconnect under the same name recovers state.
type Player struct {
	Name          string  `json:"name"`
	Capital       float64 `json:"capital"`
	Output        float64 `json:"output"`
	Connected     bool    `json:"connected"`
	Submitted     bool    `json:"submitted"`
	AutoSubmitted bool    `json:"auto_submitted"`
}

// ResetRound clears the per-round submission flags.
func (p *Player) ResetRound() {
	p.Submitted = false
	p.AutoSubmitted = false
}

// PlayerStanding is one row of the final rankings.
type PlayerStanding struct {
	PlayerName string  `json:"player_name"`
	Capital    float64 `json:"capital"`
	Output     float64 `json:"output"`
}
