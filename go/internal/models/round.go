package models

// Investment is one recorded submission within a round.
type Investment struct {
	Amount     float64 `json:"amount"`
	AutoSubmit bool    `json:"auto_submit"`
}

// Round is the ephemeral per-round ledger. It is created when the scheduler
// starts a round, sealed once results are computed, and summarized into the
// session history when the next round starts.
type Round struct {
	Number        int                   `json:"number"`
	DurationSec   int                   `json:"duration_sec"`
	TimeRemaining int                   `json:"time_remaining"`
	Investments   map[string]Investment `json:"investments"`
	Sealed        bool                  `json:"sealed"`
}

// NewRound returns an open round with a full countdown.
func NewRound(number, durationSec int) *Round {
	return &Round{
		Number:        number,
		DurationSec:   durationSec,
		TimeRemaining: durationSec,
		Investments:   make(map[string]Investment),
	}
}

// RoundResult is one player's settled outcome within a round summary.
type RoundResult struct {
	PlayerName string  `json:"player_name"`
	Investment float64 `json:"investment"`
	NewCapital float64 `json:"new_capital"`
	NewOutput  float64 `json:"new_output"`
	AutoSubmit bool    `json:"auto_submit"`
}

// RoundSummary is the sealed, read-only record of a completed round.
type RoundSummary struct {
	RoundNumber int           `json:"round_number"`
	Results     []RoundResult `json:"results"`
}
