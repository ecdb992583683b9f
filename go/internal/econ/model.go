package econ

import (
	"math"

	"github.com/econlabs/growthgame/go/internal/models"
)

// Model computes a player's next capital stock and output from the amount they
// chose to invest this round. Implementations must be pure: identical inputs
// always produce identical outputs.
type Model func(capital, output, investment float64) (newCapital, newOutput float64)

// Default returns the Solow-style update used by the classroom game: invested
// output is added to the capital stock net of depreciation, and next output is
// productivity * capital^alpha.
func Default(cfg models.GameConfig) Model {
	return func(capital, output, investment float64) (float64, float64) {
		if investment < 0 {
			investment = 0
		}
		if investment > output {
			investment = output
		}
		newCapital := (1-cfg.Depreciation)*capital + investment
		if newCapital < 0 {
			newCapital = 0
		}
		newOutput := cfg.Productivity * math.Pow(newCapital, cfg.Alpha)
		return round2(newCapital), round2(newOutput)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
