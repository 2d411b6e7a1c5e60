package game

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	// Closing here tears the socket down on kick/shutdown, which in turn
	// unblocks readPump and runs its roster cleanup.
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "game.ws").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "game.ws").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "game.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "game.ws").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump drains the socket and routes events into the room. When it
// returns, for any reason, the identity is gone from the roster: a dropped
// channel and an explicit disconnect land in the same place.
func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, room core.RoomService, c *wsConn) {
	defer func() {
		log.Info().Str("module", "game.ws").Str("sid", string(sid)).Msg("readPump closing")
		room.RemovePlayer(domain.PlayerID(sid))
		ctl.Registry.Unbind(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "game.ws").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "game.ws").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(sid, room, c, data)
		}
	}
}
