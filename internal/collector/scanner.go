package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/google/go-github/v57/github"
	"github.com/klimeurt/repo-collector/internal/config"
	"github.com/klimeurt/repo-collector/internal/githubapi"
	"github.com/klimeurt/repo-collector/internal/jsonvalue"
	"github.com/klimeurt/repo-collector/internal/repos"
	"github.com/nats-io/nats.go"
	"golang.org/x/oauth2"
)

// Scanner handles the GitHub scanning operations
type Scanner struct {
	config *config.Config
	api    *githubapi.Client
	nc     *nats.Conn
}

// New creates a new Scanner instance
func New(cfg *config.Config) (*Scanner, error) {
	// Authenticate through the transport when a token is configured
	httpClient := http.DefaultClient
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHubToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	// Connect to NATS
	nc, err := nats.Connect(cfg.NATSUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Scanner{
		config: cfg,
		api:    githubapi.NewClient(httpClient),
		nc:     nc,
	}, nil
}

// ScanRepositories fetches every repository page, applies the configured
// filter and publishes the selected repositories
func (s *Scanner) ScanRepositories(ctx context.Context) error {
	reposURL := s.config.ReposURL()
	log.Printf("Starting repository scan: %s", reposURL)

	records, err := s.api.GetAll(ctx, reposURL,
		githubapi.WithHeader("Accept", "application/vnd.github+json"),
	)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	log.Printf("Found %d repositories", len(records))

	selected, err := repos.Filter(records, s.config.Filter)
	if err != nil {
		return fmt.Errorf("failed to filter repositories: %w", err)
	}

	log.Printf("Selected %d repositories (forks=%t private=%t collaborator=%t archived=%t)",
		len(selected), s.config.Filter.Forks, s.config.Filter.Private,
		s.config.Filter.Collaborator, s.config.Filter.Archived)

	// Later records win for duplicate names, matching the filter
	byName := make(map[string]jsonvalue.Value, len(records))
	for _, record := range records {
		if name, ok := record.Lookup("full_name"); ok {
			if fullName, ok := name.AsString(); ok {
				byName[fullName] = record
			}
		}
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	published := 0
	for _, name := range names {
		record := byName[name]
		if s.config.LogPayloads {
			log.Printf("Repository %s: %s", name, jsonvalue.StripURLs(record))
		}

		repo, err := toGitHubRepository(record)
		if err != nil {
			log.Printf("Failed to decode repository %s: %v", name, err)
			continue
		}

		if err := s.publishRepository(repo, selected[name]); err != nil {
			log.Printf("Failed to publish repository %s: %v", name, err)
			// Continue processing other repositories
			continue
		}
		published++
	}

	if published > 0 {
		if err := s.nc.Flush(); err != nil {
			return fmt.Errorf("failed to flush NATS connection: %w", err)
		}
	}

	log.Printf("Successfully published %d of %d repositories", published, len(selected))
	return nil
}

// toGitHubRepository converts a raw API record into the typed go-github
// representation
func toGitHubRepository(record jsonvalue.Value) (*github.Repository, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var repo github.Repository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &repo, nil
}

// publishRepository publishes a repository to the NATS queue
func (s *Scanner) publishRepository(repo *github.Repository, cloneURL string) error {
	// Convert GitHub repository to our Repository struct
	r := Repository{
		Name:      repo.GetFullName(),
		CloneURL:  cloneURL,
		SSHURL:    repo.GetSSHURL(),
		HTTPSURL:  repo.GetCloneURL(),
		Fork:      repo.GetFork(),
		Private:   repo.GetPrivate(),
		Archived:  repo.GetArchived(),
		CreatedAt: repo.GetCreatedAt().Time,
		UpdatedAt: repo.GetUpdatedAt().Time,
		Language:  repo.GetLanguage(),
		Topics:    repo.Topics,
	}

	// Serialize to JSON
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal repository: %w", err)
	}

	// Publish to NATS
	if err := s.nc.Publish(s.config.NATSSubject, data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}

	log.Printf("Published repository: %s", r.Name)
	return nil
}

// Close cleanly shuts down the scanner
func (s *Scanner) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
