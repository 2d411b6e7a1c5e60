package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Arena/internal/core"
)

// CreateRoomRequest optionally overrides the configured roster cap.
type CreateRoomRequest struct {
	MaxPlayers int `json:"maxPlayers" binding:"omitempty,min=1"`
}

// LobbyHandlers exposes room creation and listing to the lobby UI.
type LobbyHandlers struct {
	Directory  *core.Directory
	DefaultCap int
}

func (h *LobbyHandlers) CreateRoom(c *gin.Context) {
	req := CreateRoomRequest{MaxPlayers: h.DefaultCap}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, core.CreateRoomResult{ErrorMessage: core.MsgMaxPlayers})
			return
		}
		if req.MaxPlayers == 0 {
			req.MaxPlayers = h.DefaultCap
		}
	}

	id, err := h.Directory.CreateRoom(req.MaxPlayers)
	res := core.ResultFor(id, err)
	switch res.ErrorMessage {
	case core.MsgSuccess:
		c.JSON(http.StatusCreated, res)
	case core.MsgInvalidTransport:
		c.JSON(http.StatusServiceUnavailable, res)
	default:
		c.JSON(http.StatusConflict, res)
	}
}

func (h *LobbyHandlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Directory.List()})
}
