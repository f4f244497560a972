package handlers

import (
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) LoginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/todos")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Providers": h.providers()})
}

func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	email := c.PostForm("email")

	user, err := h.Users.Authenticate(ctx, email, c.PostForm("password"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.fail(c, err)
			return
		}
		h.render(c, status, "login.html", gin.H{
			"Error":     "Invalid email or password",
			"Email":     email,
			"Providers": h.providers(),
		})
		return
	}

	if !h.startSession(c, user) {
		return
	}
	h.AuditService.LogLogin(ctx, user.ID, "", c.ClientIP(), c.Request.UserAgent())
	redirect(c, "/todos", "")
}

func (h *Handler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", nil)
}

func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	params := service.RegisterParams{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
	}

	user, err := h.Users.Register(ctx, params)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.fail(c, err)
			return
		}
		params.Password = ""
		h.render(c, status, "register.html", gin.H{"Error": err.Error(), "Form": params})
		return
	}

	if !h.startSession(c, user) {
		return
	}
	h.AuditService.LogWithRequest(ctx, user.ID, domain.AuditActionRegister, domain.AuditCategoryAuth,
		c.ClientIP(), c.Request.UserAgent(), nil)
	redirect(c, "/todos", "Welcome, "+user.FirstName)
}

// Guest signs the visitor in with a throwaway account
func (h *Handler) Guest(c *gin.Context) {
	user, err := h.Users.CreateGuest(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	redirect(c, "/todos", "You are browsing as a guest")
}

func (h *Handler) Logout(c *gin.Context) {
	if userID, ok := getUserID(c); ok {
		h.AuditService.Log(c.Request.Context(), userID, domain.AuditActionLogout, domain.AuditCategoryAuth, nil)
	}
	middleware.ClearSession(c)
	redirect(c, "/login", "Signed out")
}

func (h *Handler) startSession(c *gin.Context, user *domain.User) bool {
	if err := middleware.StartSession(c, user, h.SecureCookies); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *Handler) providers() []string {
	if h.OAuth == nil {
		return nil
	}
	return h.OAuth.Providers()
}
