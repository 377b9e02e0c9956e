package main

import (
	"log"
	"net/http"

	"balloonsum/cmd/api/app"
	"balloonsum/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	apiApp := app.New()

	addr := ":" + appConfig.Server.Port
	log.Printf("Starting summarize API on %s", addr)
	if err := http.ListenAndServe(addr, apiApp.Router()); err != nil {
		log.Fatal("Server failed:", err)
	}
}
