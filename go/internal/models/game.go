package models

// GamePhase defines the lifecycle phase of a game session.
type GamePhase string

const (
	GamePhaseIdle     GamePhase = "IDLE"
	GamePhaseRunning  GamePhase = "RUNNING"
	GamePhaseGameOver GamePhase = "GAME_OVER"
)

// GameConfig holds the tunable parameters of a session.
type GameConfig struct {
	FirstRound       int     `yaml:"first_round" json:"first_round"`
	TotalRounds      int     `yaml:"total_rounds" json:"total_rounds"`
	RoundDurationSec int     `yaml:"round_duration_sec" json:"round_duration_sec"`
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital"`
	InitialOutput    float64 `yaml:"initial_output" json:"initial_output"`
	MinInvestment    float64 `yaml:"min_investment" json:"min_investment"`
	Depreciation     float64 `yaml:"depreciation" json:"depreciation"`
	Alpha            float64 `yaml:"alpha" json:"alpha"`
	Productivity     float64 `yaml:"productivity" json:"productivity"`
}

// DefaultGameConfig returns the parameters used when no config file is present.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		FirstRound:       1,
		TotalRounds:      10,
		RoundDurationSec: 30,
		InitialCapital:   100,
		InitialOutput:    10,
		MinInvestment:    0,
		Depreciation:     0.1,
		Alpha:            0.3,
		Productivity:     1,
	}
}
