package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{"Users": users}
	if h.Admin != nil {
		if stats, err := h.Admin.GetStats(c.Request.Context()); err == nil {
			data["Stats"] = stats
		} else {
			logger.WithContext(c.Request.Context()).Warn("admin stats failed", "error", err)
		}
	}
	h.render(c, http.StatusOK, "admin_users.html", data)
}

// AdminStats returns the overview counters as JSON
func (h *Handler) AdminStats(c *gin.Context) {
	if h.Admin == nil {
		h.NotFound(c)
		return
	}
	stats, err := h.Admin.GetStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminSetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	role := domain.RoleName(c.PostForm("role"))
	if err := h.Users.SetRole(c.Request.Context(), id, role); err != nil {
		h.fail(c, err)
		return
	}
	h.AuditService.LogAdminAction(c.Request.Context(), currentUser(c).ID, domain.AuditActionAdminSetRole, id,
		map[string]interface{}{"role": string(role)})
	redirect(c, "/admin/users", "Role updated")
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	if id == currentUser(c).ID {
		h.failStatus(c, http.StatusBadRequest, "you cannot delete yourself")
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.AuditService.LogAdminAction(c.Request.Context(), currentUser(c).ID, domain.AuditActionAdminDeleteUser, id, nil)
	if h.Admin != nil {
		h.Admin.Invalidate()
	}
	redirect(c, "/admin/users", "User deleted")
}

// AdminBroadcast notifies every user
func (h *Handler) AdminBroadcast(c *gin.Context) {
	ctx := c.Request.Context()
	title := c.PostForm("title")
	message := c.PostForm("message")
	if title == "" || message == "" {
		h.failStatus(c, http.StatusBadRequest, "title and message are required")
		return
	}

	sent, err := h.Notifications.SendToAllUsers(ctx, title, message)
	h.AuditService.Log(ctx, currentUser(c).ID, domain.AuditActionAdminBroadcast, domain.AuditCategoryAdmin,
		map[string]interface{}{"title": title, "sent": sent})
	if err != nil && sent == 0 {
		h.fail(c, err)
		return
	}
	redirect(c, "/admin/users", fmt.Sprintf("Sent to %d users", sent))
}

func (h *Handler) AdminStates(c *gin.Context) {
	states, err := h.States.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "admin_states.html", gin.H{"States": states})
}

func (h *Handler) AdminCreateState(c *gin.Context) {
	if _, err := h.States.Create(c.Request.Context(), c.PostForm("name")); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/admin/states", "State created")
}

func (h *Handler) AdminRenameState(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.States.Rename(c.Request.Context(), id, c.PostForm("name")); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/admin/states", "State renamed")
}

func (h *Handler) AdminDeleteState(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.States.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/admin/states", "State deleted")
}

// AdminAudit lists recent audit entries, optionally for one category
func (h *Handler) AdminAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	category := c.Query("category")

	logs, err := h.AuditService.GetRecentLogs(c.Request.Context(), category, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"logs": logs})
		return
	}
	h.render(c, http.StatusOK, "admin_audit.html", gin.H{"Logs": logs, "Category": category})
}
