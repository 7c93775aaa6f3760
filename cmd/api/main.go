package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/digichit/digichit-server/internal/app"
	"github.com/digichit/digichit-server/internal/config"
)

func main() {
	// A .env file is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx := context.Background()
	if err := application.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Graceful shutdown on Ctrl+C or SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := application.Run(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	if err := application.Shutdown(shutdownCtx); err != nil {
		cancel()
		log.Printf("Failed to stop server gracefully: %v", err)
		os.Exit(1)
	}
	cancel()
}
