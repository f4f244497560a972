package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Users         *service.UserService
	ToDos         *service.ToDoService
	Tasks         *service.TaskService
	States        *service.StateService
	Comments      *service.CommentService
	Notifications *service.NotificationService
	OAuth         *service.OAuthService
	AuditService  *service.AuditService
	Admin         *service.AdminService

	// SecureCookies marks the session cookie Secure (production)
	SecureCookies bool
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// currentUser is only nil on routes without RequireAuth
func currentUser(c *gin.Context) *domain.User {
	return middleware.CurrentUser(c)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNullEntity),
		errors.Is(err, service.ErrUserIsToDoOwner):
		return http.StatusNotAcceptable
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrOAuthState):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrStateInUse):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail renders the error page (or JSON for API clients) for err
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed",
			"error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
		msg = "something went wrong"
	}
	h.failStatus(c, status, msg)
}

func (h *Handler) failStatus(c *gin.Context, status int, msg string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	h.render(c, status, "error.html", gin.H{
		"Status":  status,
		"Title":   http.StatusText(status),
		"Message": msg,
	})
	c.Abort()
}

// render executes a page template, adding the layout data every page uses
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u := currentUser(c); u != nil {
		data["CurrentUser"] = u
		if h.Notifications != nil {
			if n, err := h.Notifications.Count(c.Request.Context(), u.ID); err == nil {
				data["Unread"] = n
			}
		}
	}
	if flash, err := c.Cookie(flashCookie); err == nil && flash != "" {
		data["Flash"] = flash
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	c.HTML(status, name, data)
}

// NotFound renders the 404 page for unknown routes
func (h *Handler) NotFound(c *gin.Context) {
	h.failStatus(c, http.StatusNotFound, "page not found")
}

const flashCookie = "flash"

// redirect sends the browser to location with an optional one-shot message
func redirect(c *gin.Context, location, flash string) {
	if flash != "" {
		c.SetCookie(flashCookie, flash, 60, "/", "", false, true)
	}
	c.Redirect(http.StatusSeeOther, location)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON &&
		c.GetHeader("Accept") != ""
}
