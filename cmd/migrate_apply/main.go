package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"todo_webapp/internal/db"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	apply := flag.Bool("apply", false, "apply pending migrations")
	flag.Parse()

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pending, err := db.Pending(ctx, pool)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(pending) == 0 {
		fmt.Println("schema is up to date")
		return
	}

	if !*apply {
		for _, name := range pending {
			fmt.Println(name)
		}
		return
	}

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Printf("applied %d migration(s)\n", len(pending))
}
