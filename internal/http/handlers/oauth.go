package handlers

import (
	"net/http"

	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

// OAuthLogin redirects to the identity provider
func (h *Handler) OAuthLogin(c *gin.Context) {
	if h.OAuth == nil {
		h.failStatus(c, http.StatusNotFound, "oauth login is not configured")
		return
	}
	url, err := h.OAuth.Begin(c.Request.Context(), c.Param("provider"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) OAuthCallback(c *gin.Context) {
	if h.OAuth == nil {
		h.failStatus(c, http.StatusNotFound, "oauth login is not configured")
		return
	}
	provider := c.Param("provider")
	ctx := c.Request.Context()

	if e := c.Query("error"); e != "" {
		logger.WithContext(ctx).Info("oauth login denied", "provider", provider, "error", e)
		redirect(c, "/login", "Login with "+provider+" was cancelled")
		return
	}

	user, err := h.OAuth.Complete(ctx, provider, c.Query("state"), c.Query("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	h.AuditService.LogLogin(ctx, user.ID, provider, c.ClientIP(), c.Request.UserAgent())
	redirect(c, "/todos", "")
}
