package main

import (
	"context"
	"log"

	"github.com/temptedwithouta/eazy-career-backend/internal/app"
	"github.com/temptedwithouta/eazy-career-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := app.Run(context.Background(), cfg); err != nil {
		log.Fatalf("app: %v", err)
	}
}
