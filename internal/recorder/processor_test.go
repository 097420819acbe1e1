package recorder

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klimeurt/repo-collector/internal/collector"
	"github.com/klimeurt/repo-collector/internal/config"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		errorContains string
		wantRepos     map[string]string
	}{
		{
			name: "valid message",
			data: mustMarshal(t, collector.Repository{
				Name:     "org/repo",
				CloneURL: "git@github.com:org/repo",
				SSHURL:   "git@github.com:org/repo.git",
			}),
			wantRepos: map[string]string{"org/repo": "git@github.com:org/repo"},
		},
		{
			name:          "invalid JSON",
			data:          `{"name":`,
			errorContains: "failed to unmarshal repository message",
			wantRepos:     map[string]string{},
		},
		{
			name:          "missing clone URL",
			data:          `{"name": "org/repo"}`,
			errorContains: "missing name or clone URL",
			wantRepos:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(filepath.Join(t.TempDir(), "repos.json"))
			if err != nil {
				t.Fatalf("NewStore() unexpected error: %v", err)
			}
			processor := NewProcessor(store)

			err = processor.ProcessMessage(context.Background(), &nats.Msg{Data: []byte(tt.data)})
			if tt.errorContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("ProcessMessage() error = %v, want to contain %q", err, tt.errorContains)
				}
			} else if err != nil {
				t.Errorf("ProcessMessage() unexpected error: %v", err)
			}

			got := store.Snapshot()
			if len(got) != len(tt.wantRepos) {
				t.Fatalf("Snapshot() = %v, want %v", got, tt.wantRepos)
			}
			for name, url := range tt.wantRepos {
				if got[name] != url {
					t.Errorf("Snapshot()[%q] = %q, want %q", name, got[name], url)
				}
			}
		})
	}
}

func TestProcessMessageCancelledContext(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "repos.json"))
	if err != nil {
		t.Fatalf("NewStore() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := mustMarshal(t, collector.Repository{Name: "org/repo", CloneURL: "u"})
	if err := NewProcessor(store).ProcessMessage(ctx, &nats.Msg{Data: []byte(data)}); err == nil {
		t.Error("ProcessMessage() expected error for cancelled context")
	}
	if len(store.Snapshot()) != 0 {
		t.Error("Nothing should be recorded after cancellation")
	}
}

func TestRecorderEndToEnd(t *testing.T) {
	server := runMockNATSServer()
	defer server.Shutdown()

	cfg := &config.Config{
		NATSUrl:                server.ClientURL(),
		SourceSubject:          "github.repositories",
		OutputPath:             filepath.Join(t.TempDir(), "repos.json"),
		ProcessStartupMessages: false,
	}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	defer r.Stop()

	publisher, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect publisher: %v", err)
	}
	defer publisher.Close()

	for _, name := range []string{"org/a", "org/b"} {
		data := mustMarshal(t, collector.Repository{Name: name, CloneURL: "git@github.com:" + name})
		if err := publisher.Publish(cfg.SourceSubject, []byte(data)); err != nil {
			t.Fatalf("Publish() unexpected error: %v", err)
		}
	}
	if err := publisher.Flush(); err != nil {
		t.Fatalf("Flush() unexpected error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(r.Repositories()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for repositories, got %v", r.Repositories())
		}
		time.Sleep(20 * time.Millisecond)
	}

	if got := r.Repositories()["org/b"]; got != "git@github.com:org/b" {
		t.Errorf("Repositories()[org/b] = %q", got)
	}
}

func TestRecorderInvalidNATSURL(t *testing.T) {
	_, err := New(&config.Config{
		NATSUrl:    "invalid://url",
		OutputPath: filepath.Join(t.TempDir(), "repos.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "failed to connect to NATS") {
		t.Errorf("New() error = %v, want NATS connection failure", err)
	}
}

func runMockNATSServer() *natsserver.Server {
	opts := &natsserver.Options{
		Host: "127.0.0.1",
		Port: -1, // Use random port
	}

	server := natsserver.New(opts)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		panic("NATS server not ready")
	}

	return server
}

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	return string(data)
}
