package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/adapters/game"
	router "github.com/dkeye/Arena/internal/adapters/http"
	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
)

func newLobbyRouter(t *testing.T, maxRooms int, withTransport bool) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: t.TempDir(),
		Secret:     "test-secret",
		MaxRooms:   maxRooms,
		MaxPlayers: 4,
		ReadLimit:  32768,
	}

	registry := app.NewRegistry()
	hub := game.NewHub(ctx, registry, app.SimplePolicy{})
	var binder core.ChannelBinder
	if withTransport {
		binder = hub
	}
	directory := core.NewDirectory(cfg.MaxRooms, binder)
	ctl := game.NewController(hub, registry, cfg.ReadLimit)

	return router.SetupRouter(ctx, cfg, directory, ctl)
}

func postRoom(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, core.CreateRoomResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var res core.CreateRoomResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestCreateRoomEndpoint(t *testing.T) {
	t.Run("creates a room", func(t *testing.T) {
		h := newLobbyRouter(t, 2, true)
		w, res := postRoom(t, h, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, res.Success)
		assert.Equal(t, core.MsgSuccess, res.ErrorMessage)
		assert.Len(t, string(res.RoomID), 40)
	})

	t.Run("directory full", func(t *testing.T) {
		h := newLobbyRouter(t, 1, true)
		_, first := postRoom(t, h, "")
		require.True(t, first.Success)

		w, res := postRoom(t, h, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, res.Success)
		assert.Equal(t, core.MsgMaxRooms, res.ErrorMessage)
	})

	t.Run("transport unset", func(t *testing.T) {
		h := newLobbyRouter(t, 2, false)
		w, res := postRoom(t, h, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, core.MsgInvalidTransport, res.ErrorMessage)
	})

	t.Run("invalid player cap", func(t *testing.T) {
		h := newLobbyRouter(t, 2, true)
		w, res := postRoom(t, h, `{"maxPlayers": -1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, core.MsgMaxPlayers, res.ErrorMessage)
	})

	t.Run("custom player cap", func(t *testing.T) {
		h := newLobbyRouter(t, 2, true)
		w, res := postRoom(t, h, `{"maxPlayers": 2}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		require.True(t, res.Success)

		listReq := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
		listW := httptest.NewRecorder()
		h.ServeHTTP(listW, listReq)
		assert.Equal(t, http.StatusOK, listW.Code)

		var listRes struct {
			Rooms []core.RoomInfo `json:"rooms"`
		}
		require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &listRes))
		require.Len(t, listRes.Rooms, 1)
		assert.Equal(t, res.RoomID, listRes.Rooms[0].ID)
		assert.Equal(t, 2, listRes.Rooms[0].MaxPlayers)
		assert.Equal(t, 0, listRes.Rooms[0].PlayerCount)
	})
}
