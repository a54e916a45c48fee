// internal/config/config_test.go
package config

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LOBBY_SIZE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REDIS_ADDR", "")

	params := Load(testLogger())
	assert.Equal(t, ":8080", params.Addr)
	assert.Equal(t, DefaultLobbySize, params.LobbySize)
	assert.Equal(t, logrus.InfoLevel, params.LogLevel)
	assert.Empty(t, params.RedisAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOBBY_SIZE", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	params := Load(testLogger())
	assert.Equal(t, ":9000", params.Addr)
	assert.Equal(t, 5, params.LobbySize)
	assert.Equal(t, logrus.DebugLevel, params.LogLevel)
	assert.Equal(t, "localhost:6379", params.RedisAddr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LOBBY_SIZE", "zero")
	t.Setenv("LOG_LEVEL", "shouting")

	params := Load(testLogger())
	assert.Equal(t, DefaultLobbySize, params.LobbySize)
	assert.Equal(t, logrus.InfoLevel, params.LogLevel)

	t.Setenv("LOBBY_SIZE", "-3")
	params = Load(testLogger())
	assert.Equal(t, DefaultLobbySize, params.LobbySize)
}
