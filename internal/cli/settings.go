package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings are the environment-driven knobs of the CLI.
type Settings struct {
	LogLevel      string `env:"STATECHART_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"STATECHART_LOG_FORMAT" envDefault:"text"`
	MaxMicrosteps int    `env:"STATECHART_MAX_MICROSTEPS" envDefault:"10000"`
}

// LoadSettings loads the given dotenv files (".env" when none are named)
// without overriding variables already set, then parses the environment.
// Missing dotenv files are not an error.
func LoadSettings(files ...string) (Settings, error) {
	_ = godotenv.Load(files...)

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	if s.MaxMicrosteps <= 0 {
		return Settings{}, fmt.Errorf("STATECHART_MAX_MICROSTEPS must be positive, got %d", s.MaxMicrosteps)
	}
	return s, nil
}
