// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Defaults used when the environment leaves a knob unset.
const (
	DefaultPort      = "8080"
	DefaultLobbySize = 2
)

// ServerParams is everything the server binary is tuned by. Values come from
// the environment (a .env file is loaded by the binary before this runs).
type ServerParams struct {
	// Addr is the listen address, built from PORT.
	Addr string
	// LobbySize is the fixed per-lobby player capacity, from LOBBY_SIZE.
	LobbySize int
	// LogLevel parses LOG_LEVEL (logrus level names).
	LogLevel logrus.Level
	// RedisAddr enables the match recorder when non-empty, from REDIS_ADDR.
	RedisAddr string
}

// Load reads ServerParams from the environment. Unparseable values fall back
// to defaults with a logged warning; nothing here is fatal.
func Load(log *logrus.Logger) ServerParams {
	params := ServerParams{
		Addr:      ":" + DefaultPort,
		LobbySize: DefaultLobbySize,
		LogLevel:  logrus.InfoLevel,
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	if port := os.Getenv("PORT"); port != "" {
		params.Addr = ":" + port
	}

	if raw := os.Getenv("LOBBY_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			log.WithField("LOBBY_SIZE", raw).Warnf("invalid lobby size, using %d", DefaultLobbySize)
		} else {
			params.LobbySize = size
		}
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			log.WithField("LOG_LEVEL", raw).Warn("invalid log level, using info")
		} else {
			params.LogLevel = level
		}
	}

	return params
}
