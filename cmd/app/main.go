package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/mailer"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/scheduler"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := db.Migrate(migrateCtx, dbPool); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	cancelMigrate()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.InitRedisRateLimiter(rdb)

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	oauthRepo := repository.NewOAuthRepository(dbPool)
	todoRepo := repository.NewToDoRepository(dbPool)
	taskRepo := repository.NewTaskRepository(dbPool)
	stateRepo := repository.NewStateRepository(dbPool)
	commentRepo := repository.NewCommentRepository(dbPool)
	notificationRepo := repository.NewNotificationRepository(dbPool)
	auditRepo := repository.NewAuditRepository(dbPool)

	// Notification sinks run after the row is stored
	hub := ws.NewHub()
	notifications := service.NewNotificationService(notificationRepo, userRepo, hub)
	if cfg.SendGridAPIKey != "" {
		notifications.AddSink(mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.BaseURL))
		logger.Info("email notifications enabled")
	}

	users := service.NewUserService(userRepo, oauthRepo, cfg.AdminEmails)
	todos := service.NewToDoService(todoRepo, userRepo, taskRepo)

	h := &handlers.Handler{
		Users:         users,
		ToDos:         todos,
		Tasks:         service.NewTaskService(taskRepo, todos, stateRepo, notifications),
		States:        service.NewStateService(stateRepo),
		Comments:      service.NewCommentService(commentRepo, taskRepo),
		Notifications: notifications,
		OAuth:         newOAuthService(cfg, rdbNonceStore(rdb), users),
		AuditService:  service.NewAuditService(auditRepo),
		Admin:         service.NewAdminService(repository.NewStatsRepository(dbPool)),
		SecureCookies: cfg.IsProduction(),
	}

	sched := scheduler.New(service.NewDueTaskSweeper(taskRepo, notifications), cfg.SweepInterval)
	sched.Start()

	r, err := httpServer.NewRouter(h, handlers.NewHealthHandler(dbPool, rdb, version).WithSweep(sched), hub, cfg)
	if err != nil {
		logger.Fatal("failed to load templates", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Error("sweep did not finish before shutdown", "error", err)
	}
	hub.CloseAll()

	logger.Info("server exited")
}
