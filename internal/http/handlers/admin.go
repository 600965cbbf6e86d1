package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wallethunter/internal/repository"
	"wallethunter/internal/schema"

	"github.com/gin-gonic/gin"
)

// AdminUsers lists records ordered by last activity, most recent first.
func (h *Handler) AdminUsers(c *gin.Context) {
	limit := 200
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	users, err := h.Admin.ListUsers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users})
}

// AdminUser returns the full record for one user.
func (h *Handler) AdminUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	user, err := h.Admin.GetUser(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

// AdminUpdate applies an administrative edit. The body is an open field map;
// values are vetted against the registry before anything reaches the store.
func (h *Handler) AdminUpdate(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var raw map[string]any
	if err := c.BindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	updated, fields, err := h.Admin.UpdateUser(c.Request.Context(), userID, raw)
	switch {
	case errors.Is(err, schema.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated, "fields": fields})
}
