package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/klimeurt/repo-collector/internal/repos"
	"github.com/robfig/cron/v3"
)

// Config holds the application configuration
type Config struct {
	GitHubAPIURL string
	GitHubOrg    string
	GitHubToken  string
	Filter       repos.FilterOptions
	LogPayloads  bool
	NATSUrl      string
	NATSSubject  string
	CronSchedule string
	RunOnStartup bool
	// Recorder specific configuration
	SourceSubject          string
	OutputPath             string
	ProcessStartupMessages bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		GitHubAPIURL:  os.Getenv("GITHUB_API_URL"),
		GitHubOrg:     os.Getenv("GITHUB_ORG"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		NATSUrl:       os.Getenv("NATS_URL"),
		NATSSubject:   os.Getenv("NATS_SUBJECT"),
		CronSchedule:  os.Getenv("CRON_SCHEDULE"),
		SourceSubject: os.Getenv("SOURCE_SUBJECT"),
		OutputPath:    os.Getenv("REPOS_OUTPUT"),
		Filter: repos.FilterOptions{
			Forks:        os.Getenv("INCLUDE_FORKS") == "true",
			Private:      os.Getenv("INCLUDE_PRIVATE") == "true",
			Collaborator: os.Getenv("INCLUDE_COLLABORATOR") == "true",
			Archived:     os.Getenv("INCLUDE_ARCHIVED") == "true",
		},
		LogPayloads:  os.Getenv("LOG_PAYLOADS") == "true",
		RunOnStartup: os.Getenv("RUN_ON_STARTUP") == "true",
	}

	// Set defaults
	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = "https://api.github.com"
	}
	cfg.GitHubAPIURL = strings.TrimRight(cfg.GitHubAPIURL, "/")
	if cfg.NATSUrl == "" {
		cfg.NATSUrl = "nats://localhost:4222"
	}
	if cfg.NATSSubject == "" {
		cfg.NATSSubject = "github.repositories"
	}
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = "0 0 * * 0" // Weekly on Sunday at midnight
	}
	if cfg.SourceSubject == "" {
		cfg.SourceSubject = "github.repositories"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "repos.json"
	}

	// Validate
	apiURL, err := url.Parse(cfg.GitHubAPIURL)
	if err != nil || (apiURL.Scheme != "http" && apiURL.Scheme != "https") || apiURL.Host == "" {
		return nil, fmt.Errorf("GITHUB_API_URL must be an http(s) URL, got %q", cfg.GitHubAPIURL)
	}
	if _, err := cron.ParseStandard(cfg.CronSchedule); err != nil {
		return nil, fmt.Errorf("invalid CRON_SCHEDULE %q: %w", cfg.CronSchedule, err)
	}

	// Process startup messages unless explicitly disabled
	cfg.ProcessStartupMessages = os.Getenv("PROCESS_STARTUP_MESSAGES") != "false"

	return cfg, nil
}

// ReposURL returns the listing endpoint for the configured owner: the
// organization's repositories when GitHubOrg is set, otherwise those of
// the authenticated user.
func (c *Config) ReposURL() string {
	if c.GitHubOrg != "" {
		return fmt.Sprintf("%s/orgs/%s/repos?per_page=100", c.GitHubAPIURL, url.PathEscape(c.GitHubOrg))
	}
	return c.GitHubAPIURL + "/user/repos?per_page=100"
}
