package game

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

type testEnv struct {
	srv       *httptest.Server
	directory *core.Directory
	hub       *Hub
	registry  *app.Registry
	ctl       *Controller
}

func newTestEnv(t *testing.T, maxRooms int) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	registry := app.NewRegistry()
	hub := NewHub(ctx, registry, app.SimplePolicy{})
	hub.tick = 10 * time.Millisecond
	directory := core.NewDirectory(maxRooms, hub)
	ctl := NewController(hub, registry, 32768)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Test stand-in for the router's cookie middleware: the identity comes
	// from a query param instead.
	r.GET("/game/:room", func(c *gin.Context) {
		c.Set("client_token", c.Query("pid"))
		ctl.HandleGame(ctx, c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, directory: directory, hub: hub, registry: registry, ctl: ctl}
}

func (e *testEnv) dial(t *testing.T, roomID domain.RoomID, pid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + Namespace(roomID) + "?pid=" + pid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readUntil drains frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		if frame["type"] == frameType {
			return frame
		}
	}
}

func TestGameChannel_JoinMovementDisconnect(t *testing.T) {
	env := newTestEnv(t, 2)
	roomID, err := env.directory.CreateRoom(4)
	require.NoError(t, err)
	room, ok := env.directory.Room(roomID)
	require.True(t, ok)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})
	joined := readUntil(t, conn, "joined")
	player := joined["player"].(map[string]any)
	assert.Equal(t, "p1", player["id"])
	assert.Equal(t, "alice", player["name"])

	send(t, conn, map[string]any{"type": EventMovement, "left": true, "up": true})
	require.Eventually(t, func() bool {
		p, ok := room.Player("p1")
		return ok && p.X == domain.SpawnX-domain.MoveStep && p.Y == domain.SpawnY-domain.MoveStep
	}, 2*time.Second, 10*time.Millisecond)

	// The broadcaster fans the roster out to attached sessions.
	state := readUntil(t, conn, "state")
	players := state["players"].([]any)
	require.NotEmpty(t, players)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return room.PlayerCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGameChannel_ExplicitDisconnecting(t *testing.T) {
	env := newTestEnv(t, 2)
	roomID, err := env.directory.CreateRoom(4)
	require.NoError(t, err)
	room, _ := env.directory.Room(roomID)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})
	readUntil(t, conn, "joined")

	send(t, conn, map[string]any{"type": EventDisconnecting, "reason": "left the game"})
	require.Eventually(t, func() bool {
		_, ok := room.Player("p1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGameChannel_FullRoomClosesConnection(t *testing.T) {
	env := newTestEnv(t, 2)
	roomID, err := env.directory.CreateRoom(1)
	require.NoError(t, err)
	room, _ := env.directory.Room(roomID)

	first := env.dial(t, roomID, "p1")
	send(t, first, map[string]any{"type": EventNewPlayer, "name": "alice"})
	readUntil(t, first, "joined")

	second := env.dial(t, roomID, "p2")
	send(t, second, map[string]any{"type": EventNewPlayer, "name": "bob"})

	// Admission control closes the channel instead of surfacing an error.
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := second.ReadMessage(); err != nil {
			break
		}
	}
	assert.Equal(t, 1, room.PlayerCount())
	_, ok := room.Player("p2")
	assert.False(t, ok)
}

func TestGameChannel_RejoinKeepsSlot(t *testing.T) {
	env := newTestEnv(t, 2)
	roomID, err := env.directory.CreateRoom(1)
	require.NoError(t, err)
	room, _ := env.directory.Room(roomID)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})
	readUntil(t, conn, "joined")
	send(t, conn, map[string]any{"type": EventMovement, "right": true})
	require.Eventually(t, func() bool {
		p, _ := room.Player("p1")
		return p.X == domain.SpawnX+domain.MoveStep
	}, 2*time.Second, 10*time.Millisecond)

	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice2"})
	joined := readUntil(t, conn, "joined")
	player := joined["player"].(map[string]any)
	assert.Equal(t, "alice2", player["name"])
	assert.EqualValues(t, domain.SpawnX+domain.MoveStep, player["x"], "rejoin keeps position")
	assert.Equal(t, 1, room.PlayerCount())
}

// TestGameChannel_RemoveRoomReleasesChannel covers the full teardown path:
// once a room leaves the directory, its namespace stops resolving, attached
// sessions are kicked, and no identity can be admitted into it.
func TestGameChannel_RemoveRoomReleasesChannel(t *testing.T) {
	env := newTestEnv(t, 2)
	roomID, err := env.directory.CreateRoom(4)
	require.NoError(t, err)
	room, ok := env.directory.Room(roomID)
	require.True(t, ok)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})
	readUntil(t, conn, "joined")

	env.directory.RemoveRoom(roomID)

	_, ok = env.hub.Room(roomID)
	assert.False(t, ok, "removed room must be unreachable through the hub")
	assert.Equal(t, domain.RoomFinished, room.Meta().State)

	// The attached session is kicked, which runs the roster cleanup.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	require.Eventually(t, func() bool {
		return room.PlayerCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// A fresh connection can no longer find the namespace.
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + Namespace(roomID) + "?pid=p2"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGameChannel_RejoinNotRateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	env.ctl.Limiter = NewJoinRateLimiter(1, time.Hour)
	roomID, err := env.directory.CreateRoom(4)
	require.NoError(t, err)
	room, _ := env.directory.Room(roomID)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})
	readUntil(t, conn, "joined")

	// The only join allowance is spent, but a slot holder reconnecting
	// must never be locked out.
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice2"})
	joined := readUntil(t, conn, "joined")
	player := joined["player"].(map[string]any)
	assert.Equal(t, "alice2", player["name"])
	assert.Equal(t, 1, room.PlayerCount())
}

func TestGameChannel_FreshJoinRateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	env.ctl.Limiter = NewJoinRateLimiter(0, time.Hour)
	roomID, err := env.directory.CreateRoom(4)
	require.NoError(t, err)
	room, _ := env.directory.Room(roomID)

	conn := env.dial(t, roomID, "p1")
	send(t, conn, map[string]any{"type": EventNewPlayer, "name": "alice"})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, room.PlayerCount(), "limited identity must not be admitted")
}

func TestGameChannel_UnknownRoom(t *testing.T) {
	env := newTestEnv(t, 2)
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/game/deadbeef?pid=p1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
