// internal/session/queue.go
package session

import (
	"github.com/google/uuid"

	"github.com/gamesync-io/gamesync/internal/models"
)

// compEntry is a competitive queue slot. rating is the lobby's average
// rating captured at insert time; threshold is the leader's last declared
// tolerance, kept current by SetThreshold on every CheckMatch.
type compEntry struct {
	lobbyID   uuid.UUID
	rating    int
	threshold int
}

// QueueEngine holds the per-region matchmaking queues, one pair of structures
// per region: a casual FIFO and a competitive queue ordered by average rating
// (non-decreasing, ties in insertion order). A lobby sits in at most one
// queue. Owned by the coordinator; no internal locking.
type QueueEngine struct {
	casual      map[models.Region][]uuid.UUID
	competitive map[models.Region][]compEntry
}

func NewQueueEngine() *QueueEngine {
	return &QueueEngine{
		casual:      make(map[models.Region][]uuid.UUID),
		competitive: make(map[models.Region][]compEntry),
	}
}

// EnqueueCasual appends the lobby to the tail of the region's casual queue.
func (q *QueueEngine) EnqueueCasual(region models.Region, lobbyID uuid.UUID) {
	q.casual[region] = append(q.casual[region], lobbyID)
}

// EnqueueCompetitive places the lobby after every entry with rating <= its
// own, so the queue stays sorted and equal ratings keep insertion order.
func (q *QueueEngine) EnqueueCompetitive(region models.Region, lobbyID uuid.UUID, rating, threshold int) {
	entries := q.competitive[region]
	pos := len(entries)
	for i, e := range entries {
		if e.rating > rating {
			pos = i
			break
		}
	}
	entries = append(entries, compEntry{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = compEntry{lobbyID: lobbyID, rating: rating, threshold: threshold}
	q.competitive[region] = entries
}

// Remove excises the lobby from the mode's queue, preserving the order of the
// remaining entries. Removing an absent lobby is a no-op.
func (q *QueueEngine) Remove(region models.Region, mode models.GameMode, lobbyID uuid.UUID) {
	switch mode {
	case models.ModeCasual:
		entries := q.casual[region]
		for i, id := range entries {
			if id == lobbyID {
				q.casual[region] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	case models.ModeCompetitive:
		entries := q.competitive[region]
		for i, e := range entries {
			if e.lobbyID == lobbyID {
				q.competitive[region] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// SetThreshold updates the stored tolerance of a queued competitive lobby so
// later candidate scans see the leader's latest declared window.
func (q *QueueEngine) SetThreshold(region models.Region, lobbyID uuid.UUID, threshold int) {
	entries := q.competitive[region]
	for i := range entries {
		if entries[i].lobbyID == lobbyID {
			entries[i].threshold = threshold
			return
		}
	}
}

// Contains reports whether the lobby is queued under the given mode.
func (q *QueueEngine) Contains(region models.Region, mode models.GameMode, lobbyID uuid.UUID) bool {
	switch mode {
	case models.ModeCasual:
		for _, id := range q.casual[region] {
			if id == lobbyID {
				return true
			}
		}
	case models.ModeCompetitive:
		for _, e := range q.competitive[region] {
			if e.lobbyID == lobbyID {
				return true
			}
		}
	}
	return false
}

// CasualLen and CompetitiveRatings expose queue state for invariant checks.
func (q *QueueEngine) CasualLen(region models.Region) int {
	return len(q.casual[region])
}

func (q *QueueEngine) CompetitiveRatings(region models.Region) []int {
	out := make([]int, 0, len(q.competitive[region]))
	for _, e := range q.competitive[region] {
		out = append(out, e.rating)
	}
	return out
}

// TryMatchCasual pairs the requesting lobby with the head-most other entry.
// Both are removed from the queue and returned, requester first. If the
// requester is not queued (matched concurrently) or no partner exists, the
// queue is left unchanged.
func (q *QueueEngine) TryMatchCasual(region models.Region, lobbyID uuid.UUID) (uuid.UUID, uuid.UUID, bool) {
	entries := q.casual[region]
	found := false
	for _, id := range entries {
		if id == lobbyID {
			found = true
			break
		}
	}
	if !found || len(entries) < 2 {
		return uuid.Nil, uuid.Nil, false
	}
	partner := entries[0]
	if partner == lobbyID {
		partner = entries[1]
	}
	q.Remove(region, models.ModeCasual, lobbyID)
	q.Remove(region, models.ModeCasual, partner)
	return lobbyID, partner, true
}

// TryMatchCompetitive scans the region's rating-ordered queue for the first
// candidate whose stored window [r2-t2, r2+t2] intersects the requester's
// window [r1-threshold, r1+threshold]. Bounds saturate at zero. Both lobbies
// are removed and returned, requester first.
func (q *QueueEngine) TryMatchCompetitive(region models.Region, lobbyID uuid.UUID, threshold int) (uuid.UUID, uuid.UUID, bool) {
	entries := q.competitive[region]
	var requester *compEntry
	for i := range entries {
		if entries[i].lobbyID == lobbyID {
			requester = &entries[i]
			break
		}
	}
	if requester == nil {
		return uuid.Nil, uuid.Nil, false
	}
	low1, high1 := satSub(requester.rating, threshold), requester.rating+threshold
	for _, e := range entries {
		if e.lobbyID == lobbyID {
			continue
		}
		low2, high2 := satSub(e.rating, e.threshold), e.rating+e.threshold
		if low1 <= high2 && low2 <= high1 {
			q.Remove(region, models.ModeCompetitive, lobbyID)
			q.Remove(region, models.ModeCompetitive, e.lobbyID)
			return lobbyID, e.lobbyID, true
		}
	}
	return uuid.Nil, uuid.Nil, false
}

// satSub is a-b, saturating at zero. Ratings and thresholds never go
// negative.
func satSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
