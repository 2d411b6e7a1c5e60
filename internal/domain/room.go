package domain

type (
	RoomName string
	RoomID   string
)

// RoomState is the lifecycle state of a room.
type RoomState string

const (
	RoomInitializing   RoomState = "initializing"     // created, not yet bound to a channel
	RoomWaitingInLobby RoomState = "waiting_in_lobby" // bound, accepting players
	RoomPlaying        RoomState = "playing"          // round in progress
	RoomFinished       RoomState = "finished"         // torn down
)

// Room is the meta-data of one game session. The roster lives in core,
// guarded by the owning room service.
type Room struct {
	ID         RoomID    `json:"id"`
	Name       RoomName  `json:"name"`
	MaxPlayers int       `json:"max_players"`
	State      RoomState `json:"state"`
}

// NewRoom avoids raw literals in adapters and keeps construction obvious.
// Rooms start initializing; the directory flips them to waiting once the
// transport channel is bound.
func NewRoom(id RoomID, maxPlayers int) *Room {
	return &Room{
		ID:         id,
		Name:       RoomName(id),
		MaxPlayers: maxPlayers,
		State:      RoomInitializing,
	}
}
