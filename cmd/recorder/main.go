package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/klimeurt/repo-collector/internal/config"
	"github.com/klimeurt/repo-collector/internal/recorder"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create recorder service
	r, err := recorder.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create recorder: %v", err)
	}

	// Start the recorder service
	if err := r.Start(); err != nil {
		log.Fatalf("Failed to start recorder: %v", err)
	}
	defer r.Stop()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	log.Printf("Received shutdown signal, %d repositories recorded in %s", len(r.Repositories()), cfg.OutputPath)
}
