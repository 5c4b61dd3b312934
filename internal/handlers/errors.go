package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mossy-p/flake/internal/room"
)

// writeError maps domain errors onto HTTP statuses in one place so every
// handler fails the same way.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, room.ErrInvalidCredential):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrDuplicateName),
		errors.Is(err, room.ErrAlreadyVoted),
		errors.Is(err, room.ErrVotingNotOpen):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, room.ErrInvalidInput),
		errors.Is(err, room.ErrInvalidSize),
		errors.Is(err, room.ErrInvalidChoice),
		errors.Is(err, room.ErrWrongMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
