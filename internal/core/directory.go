package core

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
)

const roomIDBytes = 20 // 40 lowercase hex chars on the wire

var (
	ErrTransportUnavailable = errors.New("transport server not initialized")
	ErrMaxRoomsReached      = errors.New("max number of rooms reached")
	ErrMaxPlayersInvalid    = errors.New("room player cap must be at least 1")
)

// Directory is the process-wide table of active rooms. Creation is one
// atomic unit under mu: the cap check, the id generation loop and the
// insert can never interleave between two callers.
type Directory struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]RoomService
	maxRooms int
	binder   ChannelBinder
}

func NewDirectory(maxRooms int, binder ChannelBinder) *Directory {
	return &Directory{
		rooms:    make(map[domain.RoomID]RoomService),
		maxRooms: maxRooms,
		binder:   binder,
	}
}

func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) CanCreateRoom() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms) < d.maxRooms
}

// CreateRoom makes a room with the given player cap, binds it to its
// transport channel and returns its id. The transport precondition is
// checked before any table mutation.
func (d *Directory) CreateRoom(playerCap int) (domain.RoomID, error) {
	if d.binder == nil {
		return "", ErrTransportUnavailable
	}
	if playerCap < 1 {
		return "", ErrMaxPlayersInvalid
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.rooms) >= d.maxRooms {
		return "", ErrMaxRoomsReached
	}

	// Collisions in a 2^160 space are not expected to ever happen, but the
	// loop keeps the uniqueness invariant unconditional rather than
	// probabilistic.
	var id domain.RoomID
	for {
		candidate, err := newRoomID()
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		if _, taken := d.rooms[candidate]; !taken {
			id = candidate
			break
		}
	}

	room := NewRoomService(domain.NewRoom(id, playerCap))
	if err := d.binder.Bind(room); err != nil {
		return "", fmt.Errorf("bind room channel: %w", err)
	}
	room.SetState(domain.RoomWaitingInLobby)
	d.rooms[id] = room

	log.Info().Str("module", "core.directory").Str("room", string(id)).Int("cap", playerCap).Msg("room created")
	return id, nil
}

func (d *Directory) Room(id domain.RoomID) (RoomService, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[id]
	return room, ok
}

func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]RoomInfo, 0, len(d.rooms))
	for id, r := range d.rooms {
		out = append(out, RoomInfo{ID: id, PlayerCount: r.PlayerCount(), MaxPlayers: r.Meta().MaxPlayers})
	}
	return out
}

// RemoveRoom drops a finished room from the table and releases its
// transport channel, so the room is unreachable the moment it leaves the
// directory. Teardown policy lives with the caller; the directory only
// keeps the count honest.
func (d *Directory) RemoveRoom(id domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok := d.rooms[id]; ok {
		room.SetState(domain.RoomFinished)
		delete(d.rooms, id)
		if d.binder != nil {
			d.binder.Release(id)
		}
		log.Info().Str("module", "core.directory").Str("room", string(id)).Msg("room removed")
	}
}

func newRoomID() (domain.RoomID, error) {
	buf := make([]byte, roomIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return domain.RoomID(hex.EncodeToString(buf)), nil
}
