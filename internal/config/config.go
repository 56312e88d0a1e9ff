package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RecompletionAlways    = "always"
	RecompletionFirstOnly = "first_only"
)

// Config models connex.yml.
type Config struct {
	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`
	Audit struct {
		Async              bool   `yaml:"async"`
		QueueSize          int    `yaml:"queue_size"`
		Recompletion       string `yaml:"recompletion"`
		RecordReassignment bool   `yaml:"record_reassignment"`
	} `yaml:"audit"`
	Workflow struct {
		StrictTransitions bool `yaml:"strict_transitions"`
		AllowReopen       bool `yaml:"allow_reopen"`
	} `yaml:"workflow"`
	Query struct {
		TimelineLimit int `yaml:"timeline_limit"`
		ListLimit     int `yaml:"list_limit"`
		HistoryLimit  int `yaml:"history_limit"`
	} `yaml:"query"`
	Server struct {
		Addr             string `yaml:"addr"`
		BasePath         string `yaml:"base_path"`
		AllowActorHeader bool   `yaml:"allow_actor_header"`
	} `yaml:"server"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig receives new actions as JSON POSTs.
type WebhookConfig struct {
	URL     string   `yaml:"url"`
	Enabled *bool    `yaml:"enabled"`
	Types   []string `yaml:"types"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with connex config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config.storage.dsn is required for driver postgres")
		}
	default:
		return fmt.Errorf("config.storage.driver must be 'sqlite' or 'postgres', got %q", c.Storage.Driver)
	}
	if c.Audit.QueueSize < 0 {
		return fmt.Errorf("config.audit.queue_size must be >= 0")
	}
	if c.Audit.Async && c.Audit.QueueSize == 0 {
		return fmt.Errorf("config.audit.queue_size is required when audit.async is on")
	}
	switch c.Audit.Recompletion {
	case RecompletionAlways, RecompletionFirstOnly:
	default:
		return fmt.Errorf("config.audit.recompletion must be 'always' or 'first_only', got %q", c.Audit.Recompletion)
	}
	for name, v := range map[string]int{
		"timeline_limit": c.Query.TimelineLimit,
		"list_limit":     c.Query.ListLimit,
		"history_limit":  c.Query.HistoryLimit,
	} {
		if v <= 0 {
			return fmt.Errorf("config.query.%s must be > 0", name)
		}
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	for i, hook := range c.Webhooks {
		if strings.TrimSpace(hook.URL) == "" {
			return fmt.Errorf("webhook %d has empty url", i)
		}
	}
	return nil
}

// WebhookEnabled reports whether hook should receive deliveries.
func (h WebhookConfig) WebhookEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "connex.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns Default() if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `storage:
  driver: sqlite
  dsn: ""

audit:
  # Queue action writes and persist them from a background worker.
  async: true
  queue_size: 256
  # always | first_only
  recompletion: always
  record_reassignment: false

workflow:
  strict_transitions: false
  allow_reopen: true

query:
  timeline_limit: 50
  list_limit: 100
  history_limit: 50

server:
  addr: 127.0.0.1:8080
  base_path: /api
  allow_actor_header: false

webhooks: []
`
