package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
)

func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	email := flag.String("email", "admin@todo.local", "admin email")
	password := flag.String("password", "", "password for a new account")
	name := flag.String("name", "Admin", "first name for a new account")
	flag.Parse()

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := service.NewUserService(repository.NewUserRepository(pool), repository.NewOAuthRepository(pool), nil)

	// try to find existing user
	u, err := users.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		log.Printf("user already exists id=%d\n", u.ID)
	case errors.Is(err, service.ErrNotFound):
		if *password == "" {
			log.Fatal("-password is required to create a new account")
		}
		u, err = users.Register(ctx, service.RegisterParams{FirstName: *name, Email: *email, Password: *password})
		if err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d\n", u.ID)
	default:
		log.Fatalf("lookup failed: %v", err)
	}

	if !u.IsAdmin() {
		if err := users.SetRole(ctx, u.ID, domain.RoleAdmin); err != nil {
			log.Fatalf("promote failed: %v", err)
		}
		log.Printf("user id=%d promoted to %s\n", u.ID, domain.RoleAdmin)
	}

	// initialize JWT and print token
	service.InitJWT(secret, 24*time.Hour)
	token, err := service.GenerateJWT(u.ID, string(domain.RoleAdmin))
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
