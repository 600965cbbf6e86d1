package handlers

import (
	"errors"
	"net/http"

	"wallethunter/internal/domain"
	"wallethunter/internal/repository"

	"github.com/gin-gonic/gin"
)

type eventRequest struct {
	UserID        int64  `json:"user_id"`
	MinutesDelta  int64  `json:"minutes_delta"`
	WalletAddress string `json:"wallet_address"`
	WalletStatus  string `json:"wallet_status"`
}

// Event records an interaction: heartbeat refresh, accumulated session
// minutes and optional wallet field overwrites.
func (h *Handler) Event(c *gin.Context) {
	var req eventRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.UserID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.MinutesDelta < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes_delta must not be negative"})
		return
	}

	err := h.Repo.RecordEvent(c.Request.Context(), req.UserID, domain.Event{
		MinutesDelta:  req.MinutesDelta,
		WalletAddress: req.WalletAddress,
		WalletStatus:  req.WalletStatus,
	})
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
