// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = "8080"
	defaultCursorSalt = "account-ledger-cursor-salt"
)

// Config is the full runtime configuration of the service.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// CursorSalt feeds the hashids codec behind pagination cursors. Change
	// it and previously issued cursors stop decoding (they then restart the
	// listing rather than fail).
	CursorSalt string

	// AccountIDFloor and TransactionIDFloor let a deployment resume its id
	// sequences above ids handed out by a previous instance.
	AccountIDFloor     int64
	TransactionIDFloor int64

	// KafkaBrokers enables the Kafka event publisher when non-empty.
	KafkaBrokers []string

	LogLevel slog.Level
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:       envOr("PORT", defaultPort),
		CursorSalt: envOr("CURSOR_SALT", defaultCursorSalt),
		LogLevel:   parseLevel(os.Getenv("LOG_LEVEL")),
	}
	cfg.AccountIDFloor = envInt64("ACCOUNT_ID_FLOOR")
	cfg.TransactionIDFloor = envInt64("TRANSACTION_ID_FLOOR")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
