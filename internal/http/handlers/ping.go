package handlers

import (
	"net/http"

	"wallethunter/internal/domain"

	"github.com/gin-gonic/gin"
)

type pingRequest struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language"`
	App       string `json:"app"`
}

// Ping is called by the webapp on every inbound interaction to keep the
// identity and heartbeat current.
func (h *Handler) Ping(c *gin.Context) {
	var req pingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.UserID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	err := h.Repo.Touch(c.Request.Context(), domain.Identity{
		UserID:    req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Language:  req.Language,
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
