package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"
)

// Connects to a running server as a smoke user, creates an overdue task
// assigned to that user and waits for the sweep to push "Task Due".
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	wait := flag.Duration("wait", 90*time.Second, "how long to wait for the due notification")
	flag.Parse()

	pool := db.Connect(dsn)
	defer pool.Close()
	ctx := context.Background()

	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	stateRepo := repository.NewStateRepository(pool)

	// prepare user
	users := service.NewUserService(userRepo, repository.NewOAuthRepository(pool), nil)
	u, err := users.GetByEmail(ctx, "smoke@todo.local")
	if err != nil {
		u, err = users.Register(ctx, service.RegisterParams{FirstName: "Smoke", Email: "smoke@todo.local", Password: "smoke-password"})
		if err != nil {
			log.Fatalf("create user: %v", err)
		}
	}

	// init jwt and generate token
	service.InitJWT(jwtSecret, time.Hour)
	token, err := service.GenerateJWT(u.ID, string(u.Role))
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws/notifications?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// overdue task, assigned to the smoke user, no sinks in this process
	notifications := service.NewNotificationService(repository.NewNotificationRepository(pool), userRepo)
	todos := service.NewToDoService(repository.NewToDoRepository(pool), userRepo, taskRepo)
	tasks := service.NewTaskService(taskRepo, todos, stateRepo, notifications)

	todo, err := todos.Create(ctx, u.ID, "smoke "+time.Now().Format(time.RFC3339), "")
	if err != nil {
		log.Fatalf("create todo: %v", err)
	}
	defer func() { _ = todos.Delete(ctx, u, todo.ID) }()

	past := time.Now().Add(-time.Minute)
	task, err := tasks.Create(ctx, todo.ID, service.TaskInput{Name: "smoke task", Priority: domain.PriorityHigh, Deadline: &past})
	if err != nil {
		log.Fatalf("create task: %v", err)
	}
	if err := tasks.Assign(ctx, task.ID, u.ID); err != nil {
		log.Fatalf("assign: %v", err)
	}

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		log.Printf("got: %s", string(msg))

		var m ws.Message
		_ = json.Unmarshal(msg, &m)
		if m.Type == "notification" && m.Notification != nil && m.Notification.Title == domain.NotificationTitleTaskDue {
			log.Println("smoke test finished")
			return
		}
	}
	log.Fatal("no due notification received")
}
