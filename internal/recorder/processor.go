package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/klimeurt/repo-collector/internal/collector"
	"github.com/nats-io/nats.go"
)

// Processor handles message processing
type Processor struct {
	store *Store
}

// NewProcessor creates a new Processor instance
func NewProcessor(store *Store) *Processor {
	return &Processor{store: store}
}

// ProcessMessage records the repository carried by msg
func (p *Processor) ProcessMessage(ctx context.Context, msg *nats.Msg) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Parse the repository message
	var repo collector.Repository
	if err := json.Unmarshal(msg.Data, &repo); err != nil {
		return fmt.Errorf("failed to unmarshal repository message: %w", err)
	}
	if repo.Name == "" || repo.CloneURL == "" {
		return fmt.Errorf("repository message missing name or clone URL: %s", msg.Data)
	}

	if err := p.store.Put(repo.Name, repo.CloneURL); err != nil {
		return fmt.Errorf("failed to record %s: %w", repo.Name, err)
	}

	log.Printf("Recorded repository %s -> %s", repo.Name, repo.CloneURL)
	return nil
}
