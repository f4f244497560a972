package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type stubUsers map[int64]*domain.User

func (s stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	service.InitJWT("middleware-test", time.Hour)

	users := stubUsers{
		1: {ID: 1, FirstName: "Ann", Role: domain.RoleUser},
		2: {ID: 2, FirstName: "Root", Role: domain.RoleAdmin},
	}

	r := gin.New()
	r.Use(Authenticate(users))
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.String(200, CurrentUser(c).FirstName)
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.String(200, "ok")
	})
	return r
}

func do(r http.Handler, path string, prep func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if prep != nil {
		prep(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRedirectsAnonymousBrowser(t *testing.T) {
	w := do(authRouter(), "/private", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestCookieAndBearerAuth(t *testing.T) {
	r := authRouter()
	token, _ := service.GenerateJWT(1, "USER")

	w := do(r, "/private", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	})
	if w.Code != 200 || w.Body.String() != "Ann" {
		t.Fatalf("cookie: %d %q", w.Code, w.Body.String())
	}

	w = do(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if w.Code != 200 {
		t.Fatalf("bearer: %d", w.Code)
	}

	w = do(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer garbage")
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad bearer: %d", w.Code)
	}
}

func TestUnknownUserTokenIsAnonymous(t *testing.T) {
	r := authRouter()
	token, _ := service.GenerateJWT(99, "USER")

	w := do(r, "/private", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := authRouter()
	userToken, _ := service.GenerateJWT(1, "USER")
	adminToken, _ := service.GenerateJWT(2, "ADMIN")

	w := do(r, "/admin", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: userToken})
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("user: %d", w.Code)
	}

	w = do(r, "/admin", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: adminToken})
	})
	if w.Code != 200 {
		t.Fatalf("admin: %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(204) })

	w := do(r, "/", nil)
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("no request id")
	}
	w = do(r, "/", func(req *http.Request) { req.Header.Set(RequestIDHeader, "abc") })
	if w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("request id = %q", w.Header().Get(RequestIDHeader))
	}
}
