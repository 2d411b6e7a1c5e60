package core

import (
	"errors"

	"github.com/dkeye/Arena/internal/domain"
)

// Enumerated creation-result messages. Lobby clients switch on these
// strings, so they are part of the wire contract and never change shape.
const (
	MsgSuccess          = "Success"
	MsgInvalidTransport = "InvalidTransportServer"
	MsgMaxRooms         = "MaxNumberOfGamesReached"
	MsgMaxPlayers       = "MaxNumberOfPlayersReached"
)

// CreateRoomResult is the tagged outcome of a room-creation attempt.
type CreateRoomResult struct {
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"errorMessage"`
	RoomID       domain.RoomID `json:"roomId,omitempty"`
}

// ResultFor maps a directory error onto the enumerated message set.
func ResultFor(id domain.RoomID, err error) CreateRoomResult {
	switch {
	case err == nil:
		return CreateRoomResult{Success: true, ErrorMessage: MsgSuccess, RoomID: id}
	case errors.Is(err, ErrTransportUnavailable):
		return CreateRoomResult{ErrorMessage: MsgInvalidTransport}
	case errors.Is(err, ErrMaxRoomsReached):
		return CreateRoomResult{ErrorMessage: MsgMaxRooms}
	case errors.Is(err, ErrMaxPlayersInvalid), errors.Is(err, ErrRoomFull):
		return CreateRoomResult{ErrorMessage: MsgMaxPlayers}
	default:
		return CreateRoomResult{ErrorMessage: err.Error()}
	}
}
