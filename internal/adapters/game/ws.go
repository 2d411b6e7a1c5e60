package game

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

const sendBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller handles the per-room websocket endpoint.
type Controller struct {
	Hub       *Hub
	Registry  *app.Registry
	Limiter   *JoinRateLimiter
	ReadLimit int64
}

func NewController(hub *Hub, registry *app.Registry, readLimit int64) *Controller {
	return &Controller{
		Hub:       hub,
		Registry:  registry,
		Limiter:   NewJoinRateLimiter(5, 10*time.Second),
		ReadLimit: readLimit,
	}
}

// HandleGame attaches a connection to its room's channel. The client token
// minted by the router middleware is the connection identity and doubles as
// the player id for every event on this socket.
func (ctl *Controller) HandleGame(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("room"))
	room, ok := ctl.Hub.Room(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "game.ws").Str("sid", string(sid)).Str("room", string(roomID)).Msg("new game connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := newWSConn(ws, sendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, roomID, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, room, conn)
}
