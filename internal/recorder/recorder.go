// internal/recorder/recorder.go

// Package recorder streams finalized matches to a redis list so out-of-band
// consumers (dashboards, history crunchers) can drain them. The stream is
// strictly best-effort telemetry: authoritative session state stays in
// process memory, and a dead redis never fails or delays a match.
package recorder

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gamesync-io/gamesync/internal/models"
)

// MatchList is the redis list finalized matches are pushed onto.
const MatchList = "gamesync:matches"

const pushTimeout = 3 * time.Second

// MatchRecord is one finalized pairing as it appears on the list.
type MatchRecord struct {
	MatchedAt int64           `json:"matchedAt"`
	Region    models.Region   `json:"region"`
	Mode      models.GameMode `json:"mode"`
	Lobbies   [2]models.Lobby `json:"lobbies"`
}

// MatchRecorder pushes match records onto redis. A nil *MatchRecorder is
// returned when no address is configured; callers skip wiring it in.
type MatchRecorder struct {
	rdb *redis.Client
	log *logrus.Logger
}

// New connects a recorder to the redis at addr. Empty addr disables the
// recorder entirely.
func New(addr string, log *logrus.Logger) *MatchRecorder {
	if addr == "" {
		return nil
	}
	return &MatchRecorder{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log,
	}
}

// RecordMatch enqueues the pair asynchronously and returns immediately.
func (r *MatchRecorder) RecordMatch(a, b models.Lobby) {
	record := MatchRecord{
		MatchedAt: time.Now().UnixMilli(),
		Region:    a.Params.Region,
		Mode:      a.Params.Mode,
		Lobbies:   [2]models.Lobby{a, b},
	}
	data, err := json.Marshal(record)
	if err != nil {
		r.log.WithError(err).Error("failed to marshal match record")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := r.rdb.RPush(ctx, MatchList, data).Err(); err != nil {
			r.log.WithError(err).Warn("failed to push match record")
		}
	}()
}

// Close releases the redis connection.
func (r *MatchRecorder) Close() error {
	return r.rdb.Close()
}
