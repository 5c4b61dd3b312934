package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mossy-p/flake/internal/models"
	"github.com/mossy-p/flake/internal/room"
)

// Handler serves the room API on top of the room service.
type Handler struct {
	rooms *room.Service
}

func NewHandler(rooms *room.Service) *Handler {
	return &Handler{rooms: rooms}
}

// CreateRoom creates a new room
func (h *Handler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and groupSize are required; groupSize must be between 2 and 50"})
		return
	}

	r, creator, err := h.rooms.Create(c.Request.Context(), req.Name, req.GroupSize, room.Mode(req.Mode), req.CreatorName)
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": r.Code, "mode": r.Mode, "group_size": r.GroupSize}).Info("room created")

	resp := models.CreateRoomResponse{Code: r.Code, RoomName: r.Name}
	if creator != nil {
		resp.CreatorToken = creator.Token
		resp.ParticipantID = creator.ID
	}
	c.JSON(http.StatusCreated, resp)
}

// GetRoom returns the disclosure-filtered room summary. The optional token
// query param identifies the viewer.
func (h *Handler) GetRoom(c *gin.Context) {
	code := c.Param("code")
	token := c.Query("token")

	view, err := h.rooms.Get(c.Request.Context(), code, token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// JoinRoom admits a participant and returns their credential
func (h *Handler) JoinRoom(c *gin.Context) {
	code := c.Param("code")

	var req models.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	r, p, err := h.rooms.Join(c.Request.Context(), code, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": r.Code, "participant_id": p.ID}).Info("participant joined")

	c.JSON(http.StatusOK, models.JoinRoomResponse{
		Token:         p.Token,
		ParticipantID: p.ID,
		RoomName:      r.Name,
		Code:          r.Code,
	})
}

// CastVote records the credential holder's in/out choice
func (h *Handler) CastVote(c *gin.Context) {
	code := c.Param("code")

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `token and vote are required; vote must be "in" or "out"`})
		return
	}

	votedCount, allVoted, err := h.rooms.Vote(c.Request.Context(), code, req.Token, req.Vote)
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": code, "voted_count": votedCount, "all_voted": allVoted}).Info("vote cast")

	c.JSON(http.StatusOK, models.VoteResponse{
		Success:    true,
		VotedCount: votedCount,
		AllVoted:   allVoted,
	})
}

// Flake performs the flake-only combined join-and-vote
func (h *Handler) Flake(c *gin.Context) {
	code := c.Param("code")

	var req models.FlakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	r, p, err := h.rooms.Flake(c.Request.Context(), code, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": r.Code, "flake_count": r.FlakeCount()}).Info("flake recorded")

	c.JSON(http.StatusOK, models.FlakeResponse{
		Token:         p.Token,
		ParticipantID: p.ID,
		FlakeCount:    r.FlakeCount(),
		AllFlaked:     r.AllFlaked(),
	})
}

// GetResults returns the disclosure-filtered outcome for the credential
// holder
func (h *Handler) GetResults(c *gin.Context) {
	code := c.Param("code")
	token := c.Query("token")

	res, err := h.rooms.Results(c.Request.Context(), code, token)
	if err != nil {
		// Flake-mode rooms accept anonymous viewers; vote-mode rooms need
		// a credential, so an absent token there is a missing field, not a
		// bad one.
		if token == "" && errors.Is(err, room.ErrInvalidCredential) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ResizeRoom updates the expected group size
func (h *Handler) ResizeRoom(c *gin.Context) {
	code := c.Param("code")

	var req models.ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupSize must be between 2 and 50"})
		return
	}

	r, err := h.rooms.Resize(c.Request.Context(), code, req.GroupSize)
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": r.Code, "group_size": r.GroupSize}).Info("room resized")

	c.JSON(http.StatusOK, models.ResizeResponse{
		GroupSize:  r.GroupSize,
		FlakeCount: r.FlakeCount(),
		AllFlaked:  r.AllFlaked(),
	})
}
