package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the current user and unread count for API and socket clients
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	user := currentUser(c)
	unread, err := h.Notifications.Count(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"role":       user.Role,
		"guest":      user.Guest,
		"created_at": user.CreatedAt,
		"unread":     unread,
	})
}
