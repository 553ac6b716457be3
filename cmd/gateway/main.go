package main

import (
	"log"

	"github.com/farmdesk/herdgate/internal/gateway/app"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; deployments configure via real env vars.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application := app.New(cfg)

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
