package core

import (
	"errors"
	"sync"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrPlayerExists = errors.New("player id already in roster")
)

// roomImpl is a threadsafe in-memory room. Every roster and player-field
// mutation happens under mu, which is what keeps the capacity and
// uniqueness invariants intact when many connections fire events at once.
type roomImpl struct {
	mu     sync.RWMutex
	room   *domain.Room
	roster map[domain.PlayerID]*domain.Player
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:   room,
		roster: make(map[domain.PlayerID]*domain.Player),
	}
}

func (r *roomImpl) Meta() domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.room
}

func (r *roomImpl) SetState(s domain.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.State = s
}

func (r *roomImpl) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roster)
}

func (r *roomImpl) CanAddPlayer() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roster) < r.room.MaxPlayers
}

// AddPlayer admits a pre-built player record. Validation, the capacity
// check, the duplicate check and the insert are one atomic unit; on any
// failure the roster is untouched.
func (r *roomImpl) AddPlayer(p *domain.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.roster) >= r.room.MaxPlayers {
		return ErrRoomFull
	}
	if _, exists := r.roster[p.ID]; exists {
		return ErrPlayerExists
	}

	p.State = domain.StateWaiting
	r.roster[p.ID] = p
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("player", string(p.ID)).Msg("player added")
	return nil
}

// Join is the admission path for "new player" events. A known identity is a
// reconnect: rename, back to waiting, position preserved. An unknown one
// goes through the full admission checks and spawns fresh.
func (r *roomImpl) Join(id domain.PlayerID, name string) (PlayerDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.roster[id]; ok {
		if err := p.Rejoin(name); err != nil {
			return PlayerDTO{}, err
		}
		log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("player", string(id)).Msg("player rejoined")
		return toDTO(p), nil
	}

	p, err := domain.NewPlayer(id, name)
	if err != nil {
		return PlayerDTO{}, err
	}
	if len(r.roster) >= r.room.MaxPlayers {
		return PlayerDTO{}, ErrRoomFull
	}
	r.roster[p.ID] = p
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("player", string(p.ID)).Msg("player joined")
	return toDTO(p), nil
}

// ApplyMovement moves a known player by the fixed step per active flag.
// Movement never materializes a player; unknown identities are a no-op.
func (r *roomImpl) ApplyMovement(id domain.PlayerID, m domain.Movement) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.roster[id]
	if !ok {
		return false
	}
	p.Move(m)
	return true
}

// SetPlayerState is the hook for gameplay logic to drive the
// waiting/playing/destroyed/pinging machine. Admission and rejoin are the
// only transitions the room itself performs.
func (r *roomImpl) SetPlayerState(id domain.PlayerID, s domain.PlayerState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.roster[id]
	if !ok {
		return false
	}
	p.State = s
	return true
}

func (r *roomImpl) RemovePlayer(id domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roster, id)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("player", string(id)).Msg("player removed")
}

func (r *roomImpl) Player(id domain.PlayerID) (PlayerDTO, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.roster[id]
	if !ok {
		return PlayerDTO{}, false
	}
	return toDTO(p), true
}

// Snapshot copies the roster out so callers can fan it out to sockets
// without holding the room lock.
func (r *roomImpl) Snapshot() []PlayerDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PlayerDTO, 0, len(r.roster))
	for _, p := range r.roster {
		out = append(out, toDTO(p))
	}
	return out
}

func toDTO(p *domain.Player) PlayerDTO {
	return PlayerDTO{ID: p.ID, Name: p.Name, X: p.X, Y: p.Y, State: p.State}
}
