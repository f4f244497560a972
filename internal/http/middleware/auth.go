package middleware

import (
	"context"
	"net/http"
	"strings"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie = "access_token"

	userIDKey = "user_id"
	roleKey   = "role"
	userKey   = "user"
)

// UserLoader resolves the user named by a token
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Authenticate reads the access token from the cookie or an
// "Authorization: Bearer" header and stores the principal in the request
// context. Requests without a valid token continue anonymously.
func Authenticate(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(AccessTokenCookie)
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := service.ParseJWT(token)
		if err != nil {
			ClearSession(c)
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// deleted user or store failure, treat as anonymous
			logger.WithContext(c.Request.Context()).Debug("token user not loaded", "user_id", claims.UserID, "error", err)
			ClearSession(c)
			c.Next()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(roleKey, string(user.Role))
		c.Set(userKey, user)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(),
			logger.WithContext(c.Request.Context()).With("user_id", user.ID)))
		c.Next()
	}
}

// RequireAuth redirects browsers to the login page and rejects API clients
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if bearerToken(c) != "" || c.GetHeader("Authorization") != "" || wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// StartSession issues an access token cookie for user
func StartSession(c *gin.Context, user *domain.User, secure bool) error {
	token, err := service.GenerateJWT(user.ID, string(user.Role))
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, token, int(service.TokenTTL().Seconds()), "/", "", secure, true)
	return nil
}

func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", false, true)
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
