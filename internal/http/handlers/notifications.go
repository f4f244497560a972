package handlers

import (
	"net/http"

	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ListNotifications shows the user's notifications, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	list, err := h.Notifications.FindByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	service.SortNewestFirst(list)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"notifications": list})
		return
	}
	h.render(c, http.StatusOK, "notifications.html", gin.H{"Notifications": list})
}

// MarkRead acknowledges, and thereby deletes, one notification
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Notifications.MarkAsRead(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.fail(c, err)
		return
	}
	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	redirect(c, "/notifications", "")
}
