package internal

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	RedisURL        string `env:"REDIS_URL,required=true"`
	BadgerFilepath  string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string `env:"BLUGE_FILEPATH,required=true"`
	CatalogFilepath string `env:"CATALOG_FILEPATH"`
	LogLevel        string `env:"LOG_LEVEL,required=true"`

	HistoryLimit      int           `env:"HISTORY_LIMIT,required=true"`
	ContextWindow     int           `env:"CONTEXT_WINDOW,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	NotifyBufferSize  int           `env:"NOTIFY_BUFFER_SIZE,required=true"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,required=true"`

	AgentAPIKey  string `env:"AGENT_API_KEY"`
	AgentAPIBase string `env:"AGENT_API_BASE,required=true"`
	AgentModel   string `env:"AGENT_MODEL,required=true"`

	BlockedWords []string `env:"BLOCKED_WORDS"`
	MaskChar     string   `env:"MASK_CHAR"`
}

// MaskRune parses the configured mask character, defaulting to '*'.
func MaskRune(str string) (rune, error) {
	if str == "" {
		return '*', nil
	}
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("MASK_CHAR must be a single character, got %q", str)
	}
	return r[0], nil
}

// GetLoggerFromString builds a text slog logger from a level name,
// defaulting to INFO on anything unrecognized.
func GetLoggerFromString(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
