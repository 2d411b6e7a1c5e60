package core

import "github.com/dkeye/Arena/internal/domain"

// Frame is a raw payload fanned out to room sessions.
type Frame []byte

// SessionID is the transport-assigned connection identity. The core treats
// it as the player id; who is behind it is the transport's problem.
type SessionID string

// SignalConnection abstracts the per-connection messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PlayerDTO is a read-only view for broadcasts and APIs.
type PlayerDTO struct {
	ID    domain.PlayerID    `json:"id"`
	Name  string             `json:"name"`
	X     int                `json:"x"`
	Y     int                `json:"y"`
	State domain.PlayerState `json:"state"`
}

// RoomService is the core-facing API of a room. It owns the roster and
// serializes every mutation; nothing outside reaches the map directly.
type RoomService interface {
	Meta() domain.Room
	SetState(domain.RoomState)

	PlayerCount() int
	CanAddPlayer() bool
	AddPlayer(p *domain.Player) error
	Join(id domain.PlayerID, name string) (PlayerDTO, error)
	ApplyMovement(id domain.PlayerID, m domain.Movement) bool
	SetPlayerState(id domain.PlayerID, s domain.PlayerState) bool
	RemovePlayer(id domain.PlayerID)
	Player(id domain.PlayerID) (PlayerDTO, bool)
	Snapshot() []PlayerDTO
}

// RoomInfo is the directory listing entry.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	PlayerCount int           `json:"player_count"`
	MaxPlayers  int           `json:"max_players"`
}

// ChannelBinder is the narrow contract toward the transport layer: give a
// freshly created room its own channel namespace, and take it back when the
// room is torn down. A Bind error aborts creation.
type ChannelBinder interface {
	Bind(room RoomService) error
	Release(id domain.RoomID)
}
