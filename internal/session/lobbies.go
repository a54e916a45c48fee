// internal/session/lobbies.go
package session

import (
	"github.com/google/uuid"

	"github.com/gamesync-io/gamesync/internal/models"
)

// LobbyRegistry is the region-partitioned lobby table. The primary table
// buckets lobbies by region; the secondary index maps lobby id back to its
// region so lookups never scan. Both are mutated only through the methods
// here, which keep them consistent. Reads return copies and Update takes a
// replacement, so no caller ever holds a reference into the table.
type LobbyRegistry struct {
	byRegion map[models.Region]map[uuid.UUID]models.Lobby
	regionOf map[uuid.UUID]models.Region
}

func NewLobbyRegistry() *LobbyRegistry {
	byRegion := make(map[models.Region]map[uuid.UUID]models.Lobby, len(models.Regions))
	for _, region := range models.Regions {
		byRegion[region] = make(map[uuid.UUID]models.Lobby)
	}
	return &LobbyRegistry{
		byRegion: byRegion,
		regionOf: make(map[uuid.UUID]models.Region),
	}
}

// Create inserts a new lobby into its region bucket and the secondary index.
func (r *LobbyRegistry) Create(lobby models.Lobby) {
	region := lobby.Params.Region
	r.byRegion[region][lobby.LobbyID] = lobby.Clone()
	r.regionOf[lobby.LobbyID] = region
}

// Get returns a copy of the lobby, resolved through the secondary index.
func (r *LobbyRegistry) Get(id uuid.UUID) (models.Lobby, bool) {
	region, ok := r.regionOf[id]
	if !ok {
		return models.Lobby{}, false
	}
	return r.byRegion[region][id].Clone(), true
}

// Update replaces the stored lobby. The lobby's region is immutable, so the
// replacement lands in the same bucket. Updating an unknown lobby is a no-op.
func (r *LobbyRegistry) Update(lobby models.Lobby) {
	region, ok := r.regionOf[lobby.LobbyID]
	if !ok {
		return
	}
	r.byRegion[region][lobby.LobbyID] = lobby.Clone()
}

// Delete removes the lobby from its bucket and the secondary index together.
func (r *LobbyRegistry) Delete(id uuid.UUID) {
	region, ok := r.regionOf[id]
	if !ok {
		return
	}
	delete(r.byRegion[region], id)
	delete(r.regionOf, id)
}

// ListPublic returns copies of the public lobbies in a region.
func (r *LobbyRegistry) ListPublic(region models.Region) []models.Lobby {
	out := []models.Lobby{}
	for _, lobby := range r.byRegion[region] {
		if lobby.Params.Visibility == models.VisibilityPublic {
			out = append(out, lobby.Clone())
		}
	}
	return out
}

// Len returns the total number of lobbies across all regions.
func (r *LobbyRegistry) Len() int {
	return len(r.regionOf)
}

// All returns copies of every lobby. Used for invariant checks in tests.
func (r *LobbyRegistry) All() []models.Lobby {
	out := make([]models.Lobby, 0, len(r.regionOf))
	for id, region := range r.regionOf {
		out = append(out, r.byRegion[region][id].Clone())
	}
	return out
}
