package recorder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/klimeurt/repo-collector/internal/config"
	"github.com/nats-io/nats.go"
)

// Recorder is the service that turns published repositories into the
// repos.json mapping
type Recorder struct {
	config    *config.Config
	store     *Store
	processor *Processor
	nc        *nats.Conn
	sub       *nats.Subscription
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new Recorder instance
func New(cfg *config.Config) (*Recorder, error) {
	store, err := NewStore(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Connect to NATS
	nc, err := nats.Connect(cfg.NATSUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:    cfg,
		store:     store,
		processor: NewProcessor(store),
		nc:        nc,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins processing messages from the source subject
func (r *Recorder) Start() error {
	log.Printf("Starting recorder service...")
	log.Printf("Subscribing to subject: %s", r.config.SourceSubject)
	log.Printf("Repositories will be written to: %s", r.config.OutputPath)

	// Process any existing messages in the queue first
	if err := r.ProcessExistingMessages(); err != nil {
		return fmt.Errorf("failed to process existing messages: %w", err)
	}

	// Messages of one subscription are delivered one at a time
	sub, err := r.nc.Subscribe(r.config.SourceSubject, func(msg *nats.Msg) {
		if err := r.processor.ProcessMessage(r.ctx, msg); err != nil {
			log.Printf("Error processing message: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.config.SourceSubject, err)
	}
	if err := r.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("failed to register subscription: %w", err)
	}

	r.sub = sub
	log.Printf("Recorder service started successfully")
	return nil
}

// ProcessExistingMessages drains messages already pending on the source
// subject at startup
func (r *Recorder) ProcessExistingMessages() error {
	if !r.config.ProcessStartupMessages {
		log.Printf("Startup message processing disabled, skipping...")
		return nil
	}

	log.Printf("Processing existing messages from queue: %s", r.config.SourceSubject)

	sub, err := r.nc.SubscribeSync(r.config.SourceSubject)
	if err != nil {
		return fmt.Errorf("failed to create sync subscription for startup processing: %w", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Warning: failed to unsubscribe during startup processing: %v", err)
		}
	}()

	processedCount := 0
	timeout := 1 * time.Second // Short timeout to detect empty queue

	for {
		msg, err := sub.NextMsg(timeout)
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				break
			}
			return fmt.Errorf("error receiving message during startup processing: %w", err)
		}

		if err := r.processor.ProcessMessage(r.ctx, msg); err != nil {
			log.Printf("Error processing startup message: %v", err)
			// Continue processing other messages even if one fails
		} else {
			processedCount++
		}
	}

	log.Printf("Startup message processing completed. Processed %d messages.", processedCount)
	return nil
}

// Repositories returns the mapping recorded so far
func (r *Recorder) Repositories() map[string]string {
	return r.store.Snapshot()
}

// Stop gracefully shuts down the recorder service
func (r *Recorder) Stop() {
	log.Printf("Stopping recorder service...")

	if r.sub != nil {
		if err := r.sub.Unsubscribe(); err != nil {
			log.Printf("Warning: failed to unsubscribe: %v", err)
		}
	}

	r.cancel()

	if r.nc != nil {
		r.nc.Close()
	}

	log.Printf("Recorder service stopped")
}

// Wait blocks until the service is stopped
func (r *Recorder) Wait() {
	<-r.ctx.Done()
}
