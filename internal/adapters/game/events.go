package game

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

// Inbound event names. These are the wire contract with game clients.
const (
	EventNewPlayer     = "new player"
	EventMovement      = "movement"
	EventDisconnecting = "disconnecting"
	EventPing          = "ping"
)

func (ctl *Controller) handleEvent(sid core.SessionID, room core.RoomService, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("bad json")
		return
	}

	switch env.Type {
	case EventNewPlayer:
		ctl.handleNewPlayer(sid, room, c, data)
	case EventMovement:
		ctl.handleMovement(sid, room, data)
	case EventDisconnecting:
		ctl.handleDisconnecting(sid, room, data)
	case EventPing:
		ctl.sendJSON(c, map[string]any{"type": "pong"})
	default:
		log.Warn().Str("module", "game.ws").Str("type", env.Type).Msg("unknown event")
	}
}

// handleNewPlayer admits the connection identity into the roster, or, for
// an identity that already holds a slot, treats the event as a rejoin. A
// full room closes the connection; that is admission control, not an error
// the game layer sees.
func (ctl *Controller) handleNewPlayer(sid core.SessionID, room core.RoomService, c *wsConn, data []byte) {
	// The limiter gates fresh admissions only. An identity that already
	// holds a slot is reconnecting after a drop, and a flapping connection
	// must always be able to reclaim its slot.
	if _, present := room.Player(domain.PlayerID(sid)); !present && !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "game.ws").Str("sid", string(sid)).Msg("join rate limited")
		return
	}

	var p struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("bad join payload")
		ctl.sendJSON(c, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	player, err := room.Join(domain.PlayerID(sid), p.Name)
	switch {
	case err == nil:
		ctl.sendJSON(c, map[string]any{"type": "joined", "player": player})
	case errors.Is(err, core.ErrRoomFull):
		log.Info().Str("module", "game.ws").Str("sid", string(sid)).Msg("room full, closing connection")
		ctl.Registry.Cancel(sid)
	default:
		log.Info().Err(err).Str("module", "game.ws").Str("sid", string(sid)).Msg("join rejected")
		ctl.sendJSON(c, map[string]any{"type": "error", "error": err.Error()})
	}
}

// handleMovement applies directional flags to the identity's player. An
// unknown identity is a no-op; movement never creates a player.
func (ctl *Controller) handleMovement(sid core.SessionID, room core.RoomService, data []byte) {
	var p struct {
		Type string `json:"type"`
		domain.Movement
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("bad movement payload")
		return
	}
	room.ApplyMovement(domain.PlayerID(sid), p.Movement)
}

// handleDisconnecting removes the identity from the roster immediately.
// The socket teardown in readPump does the same, so whichever fires first
// wins and the other is a no-op.
func (ctl *Controller) handleDisconnecting(sid core.SessionID, room core.RoomService, data []byte) {
	var p struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("bad disconnect payload")
	}
	log.Info().Str("module", "game.ws").Str("sid", string(sid)).Str("reason", p.Reason).Msg("disconnecting")
	room.RemovePlayer(domain.PlayerID(sid))
	ctl.Registry.Unbind(sid)
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "game.ws").Msg("marshal frame")
		return
	}
	if err := c.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "game.ws").Msg("send frame")
	}
}
