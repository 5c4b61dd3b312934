package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/mossy-p/flake/internal/middleware"
	"github.com/mossy-p/flake/internal/models"
)

// Login checks the configured admin credential and issues a JWT for the
// admin endpoints. An empty configured password disables admin access
// entirely.
func Login(username, password, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(username)) == 1
		passOK := password != "" && subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) == 1
		if !userOK || !passOK {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		claims := middleware.AdminClaims{
			Username: req.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				NotBefore: jwt.NewNumericDate(time.Now()),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{Token: tokenString})
	}
}

// InspectRoom returns the admin view of a room record: everything except
// participant credentials and individual vote values.
func (h *Handler) InspectRoom(c *gin.Context) {
	code := c.Param("code")

	r, err := h.rooms.Inspect(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := models.AdminRoomResponse{
		ID:         r.ID,
		Name:       r.Name,
		Code:       r.Code,
		Mode:       string(r.Mode),
		GroupSize:  r.GroupSize,
		CreatedAt:  r.CreatedAt,
		Version:    r.Version,
		VotedCount: r.VotedCount(),
		FlakeCount: r.FlakeCount(),
	}
	for _, p := range r.Participants {
		_, voted := r.Votes[p.ID]
		resp.Participants = append(resp.Participants, models.AdminParticipant{
			ID:       p.ID,
			Name:     p.Name,
			JoinedAt: p.JoinedAt,
			HasVoted: voted,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteRoom removes a room ahead of its TTL
func (h *Handler) DeleteRoom(c *gin.Context) {
	code := c.Param("code")

	if err := h.rooms.Delete(c.Request.Context(), code); err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{"code": code, "admin": c.GetString("admin_user")}).Info("room deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
