// Package domain contains entities without transport or lifecycle logic,
// just meta-data and the rules that keep it valid.
package domain

import (
	"errors"
	"strings"
)

const (
	// MoveStep is the fixed distance a player travels per movement event,
	// per axis. Flags compose, so left+up moves the full step on both axes.
	MoveStep = 5

	// Default spawn point for freshly admitted players.
	SpawnX = 300
	SpawnY = 300
)

var (
	ErrPlayerInvalid   = errors.New("invalid player record")
	ErrPlayerIDEmpty   = errors.New("player id empty")
	ErrPlayerNameEmpty = errors.New("player name empty")
)

type PlayerID string

// PlayerState is the lifecycle state of a player inside a room.
type PlayerState string

const (
	StateWaiting   PlayerState = "waiting"   // in lobby or spectating
	StatePlaying   PlayerState = "playing"   // in the round
	StateDestroyed PlayerState = "destroyed" // defeated
	// StatePinging marks a player whose connection went quiet. Nothing in the
	// core assigns it yet; it is reserved for heartbeat-loss detection.
	StatePinging PlayerState = "pinging"
)

// Player is the server-authoritative record of one connection identity
// inside a room. The owning room serializes all mutation.
type Player struct {
	ID    PlayerID    `json:"id"`
	Name  string      `json:"name"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	State PlayerState `json:"state"`
}

// NewPlayer validates the transport-assigned id and the display name and
// returns a player at the default spawn, waiting.
func NewPlayer(id PlayerID, name string) (*Player, error) {
	trimmedID := strings.TrimSpace(string(id))
	if trimmedID == "" {
		return nil, ErrPlayerIDEmpty
	}
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return nil, ErrPlayerNameEmpty
	}
	return &Player{
		ID:    PlayerID(trimmedID),
		Name:  trimmedName,
		X:     SpawnX,
		Y:     SpawnY,
		State: StateWaiting,
	}, nil
}

// Validate re-checks the invariants NewPlayer establishes, for records that
// arrive pre-built.
func (p *Player) Validate() error {
	if p == nil {
		return ErrPlayerInvalid
	}
	if strings.TrimSpace(string(p.ID)) == "" {
		return ErrPlayerIDEmpty
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrPlayerNameEmpty
	}
	return nil
}

// Movement carries the directional flags of a single movement event.
// Each active flag applies independently, so opposing flags cancel out.
type Movement struct {
	Left  bool `json:"left"`
	Up    bool `json:"up"`
	Right bool `json:"right"`
	Down  bool `json:"down"`
}

// Move applies one movement event. No bounds clamping here; boundaries are
// a game-rule concern, not bookkeeping.
func (p *Player) Move(m Movement) {
	if m.Left {
		p.X -= MoveStep
	}
	if m.Right {
		p.X += MoveStep
	}
	if m.Up {
		p.Y -= MoveStep
	}
	if m.Down {
		p.Y += MoveStep
	}
}

// Rejoin models a reconnect after a transient drop: the player keeps its
// slot and position but picks up the new name and returns to waiting.
func (p *Player) Rejoin(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrPlayerNameEmpty
	}
	p.Name = trimmed
	p.State = StateWaiting
	return nil
}
