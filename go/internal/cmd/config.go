package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/econlabs/growthgame/go/internal/models"
)

// Config is the server configuration, loaded from a YAML file with
// environment overrides for deployment-specific values.
type Config struct {
	Game       models.GameConfig `yaml:"game"`
	RosterFile string            `yaml:"roster_file"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads the YAML config file. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	config := &Config{
		Game:       models.DefaultGameConfig(),
		RosterFile: "roster.yaml",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Game.TotalRounds <= 0 {
		return nil, fmt.Errorf("total_rounds must be positive, got %d", config.Game.TotalRounds)
	}
	if config.Game.RoundDurationSec <= 0 {
		return nil, fmt.Errorf("round_duration_sec must be positive, got %d", config.Game.RoundDurationSec)
	}
	return config, nil
}
