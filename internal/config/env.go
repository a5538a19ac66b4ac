package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment.
// Values become the defaults of the matching CLI flags.
type Env struct {
	DBPath     string `env:"LANERUSH_DB" envDefault:"~/.lanerush/scores.db"`
	ConfigPath string `env:"LANERUSH_CONFIG"`
	SSHAddr    string `env:"LANERUSH_SSH_ADDR" envDefault:":23234"`
	HostKey    string `env:"LANERUSH_HOST_KEY"`
	LogLevel   string `env:"LANERUSH_LOG_LEVEL" envDefault:"info"`
	Player     string `env:"LANERUSH_PLAYER"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
