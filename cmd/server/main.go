// cmd/server/main.go
package main

import (
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/gamesync-io/gamesync/internal/config"
	"github.com/gamesync-io/gamesync/internal/handlers"
	"github.com/gamesync-io/gamesync/internal/middleware"
	"github.com/gamesync-io/gamesync/internal/recorder"
	"github.com/gamesync-io/gamesync/internal/session"
)

func main() {
	logger := logrus.New()
	cfg := config.Load(logger)
	logger.SetLevel(cfg.LogLevel)

	coord := session.NewCoordinator(cfg.LobbySize, logger)

	if rec := recorder.New(cfg.RedisAddr, logger); rec != nil {
		coord.Recorder = rec
		defer rec.Close()
		logger.Infof("match recorder enabled (%s)", cfg.RedisAddr)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.AccessLog(logger)(http.HandlerFunc(
		handlers.SessionWSHandler(logger, coord),
	)))

	logger.Infof("gamesync server listening on %s (lobby size %d)", cfg.Addr, cfg.LobbySize)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
