// Package config parses process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
)

// Server configures cmd/rindverse.
type Server struct {
	Port         int           `env:"RINDVERSE_PORT" envDefault:"8080"`
	DBPath       string        `env:"RINDVERSE_DB" envDefault:"data/rindverse.db"`
	AdminKey     string        `env:"RINDVERSE_ADMIN_KEY"`
	AnthropicKey string        `env:"ANTHROPIC_API_KEY"`
	LLMPerMinute int           `env:"RINDVERSE_LLM_PER_MIN" envDefault:"20"`
	WeatherKey   string        `env:"OPENWEATHER_API_KEY"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:","`
	SessionTTL   time.Duration `env:"RINDVERSE_SESSION_TTL" envDefault:"30m"`
	MaxSessions  int           `env:"RINDVERSE_MAX_SESSIONS" envDefault:"1000"`
	MaxClip      string        `env:"RINDVERSE_MAX_CLIP" envDefault:"512KB"` // e.g. "256KB", "1 MiB"
	LogLevel     string        `env:"RINDVERSE_LOG_LEVEL" envDefault:"info"`
}

// MaxClipBytes parses MaxClip. An empty value means no limit.
func (s Server) MaxClipBytes() (uint64, error) {
	if strings.TrimSpace(s.MaxClip) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s.MaxClip)
	if err != nil {
		return 0, fmt.Errorf("parse RINDVERSE_MAX_CLIP: %w", err)
	}
	return n, nil
}

// Guide configures cmd/guide.
type Guide struct {
	APIURL       string        `env:"RINDVERSE_API_URL" envDefault:"http://localhost:8080"`
	AnthropicKey string        `env:"ANTHROPIC_API_KEY"`
	LLMPerMinute int           `env:"RINDVERSE_LLM_PER_MIN" envDefault:"20"`
	ClientID     string        `env:"GUIDE_CLIENT_ID"`
	MaxSteps     int           `env:"GUIDE_MAX_STEPS" envDefault:"12"`
	ReadyTimeout time.Duration `env:"GUIDE_READY_TIMEOUT" envDefault:"2m"`
	Interval     time.Duration `env:"GUIDE_INTERVAL" envDefault:"0s"` // 0 walks once and exits
	MemoryPath   string        `env:"GUIDE_MEMORY" envDefault:"data/guide_memory.json"`
	LogLevel     string        `env:"RINDVERSE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SlogLevel maps a level name to a slog.Level, defaulting to Info.
func SlogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
