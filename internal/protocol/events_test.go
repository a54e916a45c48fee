// internal/protocol/events_test.go
package protocol

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamesync-io/gamesync/internal/models"
)

func TestDecodeClientEvent(t *testing.T) {
	ev, err := DecodeClientEvent([]byte(`{
		"type": "CreateLobby",
		"params": {"name": "late night", "visibility": "Public", "region": "EU", "mode": "Competitive"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventCreateLobby, ev.Type)
	require.NotNil(t, ev.Params)
	assert.Equal(t, "late night", ev.Params.Name)
	assert.Equal(t, models.RegionEU, ev.Params.Region)
	assert.Equal(t, models.ModeCompetitive, ev.Params.Mode)

	ev, err = DecodeClientEvent([]byte(`{"type": "CheckMatch", "lobbyId": "` + uuid.NewString() + `", "threshold": 25}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Threshold)
	assert.Equal(t, 25, *ev.Threshold)

	ev, err = DecodeClientEvent([]byte(`{"type": "Broadcast", "message": "hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", ev.Message)
	assert.Nil(t, ev.Threshold)
}

func TestDecodeClientEventRejectsGarbage(t *testing.T) {
	_, err := DecodeClientEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeClientEvent([]byte(`{"type": "FormatHardDrive"}`))
	assert.Error(t, err)

	// Server-only variants are not accepted inbound.
	_, err = DecodeClientEvent([]byte(`{"type": "MatchFound"}`))
	assert.Error(t, err)
}

func TestServerEventRoundTrip(t *testing.T) {
	leader := uuid.New()
	lobby := models.Lobby{
		LobbyID: uuid.New(),
		Params:  models.LobbyParams{Name: "t", Visibility: models.VisibilityPublic, Region: models.RegionNA, Mode: models.ModeCasual},
		Leader:  leader,
		Status:  models.StatusIngame,
		Players: []uuid.UUID{leader},
	}

	frame, err := EncodeServerEvent(MatchFoundEvent(lobby))
	require.NoError(t, err)
	ev, err := DecodeServerEvent(frame)
	require.NoError(t, err)
	assert.Equal(t, EventMatchFound, ev.Type)
	require.NotNil(t, ev.Lobby)
	assert.Equal(t, lobby, *ev.Lobby)

	frame, err = EncodeServerEvent(ErrorEvent("LobbyFullError", "Failed to join lobby. Lobby full"))
	require.NoError(t, err)
	ev, err = DecodeServerEvent(frame)
	require.NoError(t, err)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "LobbyFullError", ev.Kind)
}

func TestServerEventFieldNames(t *testing.T) {
	player, lobbyID := uuid.New(), uuid.New()
	frame, err := EncodeServerEvent(LobbyJoinedEvent(player, lobbyID))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(frame, &raw))
	assert.Equal(t, "LobbyJoined", raw["type"])
	assert.Equal(t, player.String(), raw["playerId"])
	assert.Equal(t, lobbyID.String(), raw["lobbyId"])

	// Unused envelope fields stay off the wire.
	assert.NotContains(t, raw, "lobby")
	assert.NotContains(t, raw, "message")
	assert.NotContains(t, raw, "kind")
}

func TestConnectedEventIsBare(t *testing.T) {
	frame, err := EncodeServerEvent(ConnectedEvent())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "Connected"}`, string(frame))
}
