// Command stubserver runs the local matching API the client develops and
// tests against.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devmatch/internal/config"
	"devmatch/internal/observability"
	"devmatch/internal/stubapi"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.GlobalLogger

	srv, err := stubapi.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	app := srv.App()

	if cfg.SeedCandidates > 0 {
		if err := srv.SeedCandidates(cfg.SeedCandidates); err != nil {
			log.Printf("Seeding skipped: %v", err)
		}
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Stub API listening on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
