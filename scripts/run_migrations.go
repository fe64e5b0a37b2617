package main

import (
	"context"
	"log"
	"os"

	"github.com/safar/supershop/internal/config"
	"github.com/safar/supershop/internal/database"
	"github.com/safar/supershop/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Store)
	if err != nil {
		log.Fatalf("Connect to session store: %v", err)
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db, migrations.FS, direction)
	if err != nil {
		log.Fatalf("Run migrations: %v", err)
	}

	log.Printf("Successfully ran %d migration(s) %s on %s", applied, direction, cfg.Store.URL)
}
