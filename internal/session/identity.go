// internal/session/identity.go
package session

import "github.com/google/uuid"

// Endpoint is a live transport peer able to accept pre-encoded frames.
// Send must not block: a peer that cannot take the frame returns an error and
// the frame is dropped. String identifies the peer in logs.
type Endpoint interface {
	Send(frame []byte) error
	String() string
}

// IdentityRegistry binds each live endpoint to a freshly minted player id and
// back. The two maps are mutated together, so the mapping stays bijective.
// It carries no lock of its own: the coordinator owns it and serializes all
// access; the dispatcher only reads it under the same serialization.
type IdentityRegistry struct {
	byEndpoint map[Endpoint]uuid.UUID
	byPlayer   map[uuid.UUID]Endpoint
}

func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byEndpoint: make(map[Endpoint]uuid.UUID),
		byPlayer:   make(map[uuid.UUID]Endpoint),
	}
}

// Attach mints a player id for a newly connected endpoint and records both
// directions of the mapping.
func (r *IdentityRegistry) Attach(ep Endpoint) uuid.UUID {
	id := uuid.New()
	r.byEndpoint[ep] = id
	r.byPlayer[id] = ep
	return id
}

// ResolveEndpoint returns the player bound to ep.
func (r *IdentityRegistry) ResolveEndpoint(ep Endpoint) (uuid.UUID, bool) {
	id, ok := r.byEndpoint[ep]
	return id, ok
}

// ResolvePlayer returns the endpoint bound to player.
func (r *IdentityRegistry) ResolvePlayer(player uuid.UUID) (Endpoint, bool) {
	ep, ok := r.byPlayer[player]
	return ep, ok
}

// Detach removes both directions of the mapping. Detaching an unknown
// endpoint is a no-op.
func (r *IdentityRegistry) Detach(ep Endpoint) {
	id, ok := r.byEndpoint[ep]
	if !ok {
		return
	}
	delete(r.byEndpoint, ep)
	delete(r.byPlayer, id)
}

// Players returns the ids of every connected player.
func (r *IdentityRegistry) Players() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.byPlayer))
	for id := range r.byPlayer {
		out = append(out, id)
	}
	return out
}

// Len returns the number of live bindings.
func (r *IdentityRegistry) Len() int {
	return len(r.byEndpoint)
}
