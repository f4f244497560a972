package http

import (
	nethttp "net/http"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with middleware, templates and every route
func NewRouter(h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics())

	// CORS only matters for API clients on another origin
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.Authenticate(h.Users))
	r.SetHTMLTemplate(tmpl)

	RegisterRoutes(r, h, health, hub, cfg)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(nethttp.StatusSeeOther, "/todos")
	})

	// Auth (per IP rate limit)
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	r.GET("/login", h.LoginPage)
	r.POST("/login", authRL, h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", authRL, h.Register)
	r.POST("/guest", authRL, h.Guest)
	r.POST("/logout", h.Logout)
	r.GET("/oauth2/:provider/login", authRL, h.OAuthLogin)
	r.GET("/oauth2/:provider/callback", authRL, h.OAuthCallback)

	// Cookie session or ?token= for non-browser clients
	r.GET("/ws/notifications", ws.HandleWS(hub, cfg.SocketOrigins()))

	authed := r.Group("/")
	authed.Use(middleware.RequireAuth())

	// Write rate limiter (per user)
	writeRL := middleware.UserRateLimit(cfg.WriteRateLimit, cfg.WriteRateWindow)

	authed.GET("/me", h.Me)

	// ToDos
	authed.GET("/todos", h.ListToDos)
	authed.POST("/todos", writeRL, h.CreateToDo)
	authed.GET("/todos/:id", h.ShowToDo)
	authed.POST("/todos/:id", writeRL, h.UpdateToDo)
	authed.POST("/todos/:id/delete", writeRL, h.DeleteToDo)
	authed.POST("/todos/:id/collaborators", writeRL, h.AddCollaborator)
	authed.POST("/todos/:id/collaborators/:userId/delete", writeRL, h.RemoveCollaborator)
	authed.POST("/todos/:id/tasks", writeRL, h.CreateTask)

	// Tasks
	authed.GET("/tasks/:id", h.ShowTask)
	authed.POST("/tasks/:id", writeRL, h.UpdateTask)
	authed.POST("/tasks/:id/delete", writeRL, h.DeleteTask)
	authed.POST("/tasks/:id/assignees", writeRL, h.AssignTask)
	authed.POST("/tasks/:id/assignees/:userId/delete", writeRL, h.UnassignTask)
	authed.POST("/tasks/:id/comments", writeRL, h.AddComment)
	authed.POST("/comments/:id/delete", writeRL, h.DeleteComment)

	// Notifications
	authed.GET("/notifications", h.ListNotifications)
	authed.POST("/notifications/:id/read", writeRL, h.MarkRead)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.AdminUsers)
		admin.POST("/users/:id/role", h.AdminSetRole)
		admin.POST("/users/:id/delete", h.AdminDeleteUser)
		admin.POST("/notifications", h.AdminBroadcast)
		admin.GET("/states", h.AdminStates)
		admin.POST("/states", h.AdminCreateState)
		admin.POST("/states/:id", h.AdminRenameState)
		admin.POST("/states/:id/delete", h.AdminDeleteState)
		admin.GET("/audit", h.AdminAudit)
		admin.GET("/stats", h.AdminStats)
	}

	r.NoRoute(h.NotFound)
}
