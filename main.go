package main

import (
	"context"
	"log"

	"balloonsum/adapters/jsonlog"
	"balloonsum/adapters/postgres"
	"balloonsum/internal/config"
	"balloonsum/internal/errors"
	"balloonsum/internal/report"
	"balloonsum/ports"
	"balloonsum/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initHistoryStore connects the optional batch history store.
// Returns nil when DATABASE_URL is not configured.
func initHistoryStore(appConfig *config.Config) (ports.BatchRepository, *sqlx.DB, error) {
	if !appConfig.Database.Enabled {
		log.Println("No DATABASE_URL configured, run history disabled")
		return nil, nil, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "history schema setup failed")
	}

	log.Println("Run history store connected")
	return postgres.NewBatchRepository(db), db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Optional run history store
	batches, db, err := initHistoryStore(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize history store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// HTML renderer with embedded templates
	renderer, err := report.NewRenderer(appConfig.Report)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	// Initialize web server
	server := ui.NewServer(appConfig, jsonlog.NewReader(), renderer, batches)

	log.Printf("Starting balloonsum server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
