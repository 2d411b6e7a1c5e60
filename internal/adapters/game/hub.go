package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

// NamespacePrefix is the path prefix of per-room channels; a room's channel
// lives at NamespacePrefix + "/" + id.
const NamespacePrefix = "/game"

const defaultTick = 50 * time.Millisecond

// roomChannel pairs a room with its channel namespace and the broadcaster
// that fans roster snapshots out to its sessions.
type roomChannel struct {
	room   core.RoomService
	cancel context.CancelFunc
}

// Hub is the transport side of room creation: it implements
// core.ChannelBinder and owns the table of live room channels.
type Hub struct {
	registry *app.Registry
	policy   app.Policy
	ctx      context.Context
	tick     time.Duration

	mu       sync.RWMutex
	channels map[domain.RoomID]*roomChannel
}

func NewHub(ctx context.Context, registry *app.Registry, policy app.Policy) *Hub {
	return &Hub{
		registry: registry,
		policy:   policy,
		ctx:      ctx,
		tick:     defaultTick,
		channels: make(map[domain.RoomID]*roomChannel),
	}
}

// Bind gives a freshly created room its channel namespace and starts its
// state broadcaster.
func (h *Hub) Bind(room core.RoomService) error {
	id := room.Meta().ID
	ctx, cancel := context.WithCancel(h.ctx)

	h.mu.Lock()
	h.channels[id] = &roomChannel{room: room, cancel: cancel}
	h.mu.Unlock()

	go h.broadcastState(ctx, room)
	log.Info().Str("module", "game.hub").Str("room", string(id)).Str("namespace", Namespace(id)).Msg("room channel bound")
	return nil
}

// Release tears a room's channel down: the broadcaster stops, the
// namespace stops resolving, and any sessions still attached are kicked so
// their pumps run the usual cleanup.
func (h *Hub) Release(id domain.RoomID) {
	h.mu.Lock()
	ch, ok := h.channels[id]
	delete(h.channels, id)
	h.mu.Unlock()
	if !ok {
		return
	}
	ch.cancel()
	for _, s := range h.registry.SessionsOfRoom(id) {
		h.registry.Cancel(s.SID)
	}
	log.Info().Str("module", "game.hub").Str("room", string(id)).Msg("room channel released")
}

func (h *Hub) Room(id domain.RoomID) (core.RoomService, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.channels[id]
	if !ok {
		return nil, false
	}
	return ch.room, true
}

// Namespace is the channel path for a room id.
func Namespace(id domain.RoomID) string {
	return NamespacePrefix + "/" + string(id)
}

type stateFrame struct {
	Type    string           `json:"type"`
	Players []core.PlayerDTO `json:"players"`
}

// broadcastState fans the roster snapshot out to every session on the room
// at a fixed tick. Snapshots are copied out of the room before any send,
// so no core lock is held while touching sockets.
func (h *Hub) broadcastState(ctx context.Context, room core.RoomService) {
	id := room.Meta().ID
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := h.registry.SessionsOfRoom(id)
			if len(sessions) == 0 {
				continue
			}
			data, err := json.Marshal(stateFrame{Type: "state", Players: room.Snapshot()})
			if err != nil {
				log.Error().Err(err).Str("module", "game.hub").Msg("marshal state frame")
				continue
			}
			for _, s := range sessions {
				if err := s.Conn.TrySend(data); err == nil {
					continue
				}
				switch h.policy.OnBackPressure(room, s.SID) {
				case app.KickSession:
					log.Warn().Str("module", "game.hub").Str("sid", string(s.SID)).Msg("kicking slow session")
					h.registry.Cancel(s.SID)
				case app.DropFrame, app.NoAction:
				}
			}
		}
	}
}
