// Package config provides configuration loading and management for semschema.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/ingest"
	ssconfig "github.com/c360studio/semstreams/config"
	"gopkg.in/yaml.v3"
)

// Config represents the complete semschema configuration
type Config struct {
	Schemas  []SchemaSource `yaml:"schemas"`
	Output   OutputConfig   `yaml:"output"`
	Codegen  codegen.Config `yaml:"codegen"`
	Reasoner ReasonerConfig `yaml:"reasoner"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Publish  PublishConfig  `yaml:"publish"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// SchemaSource names one schema document. Exactly one of Path and URL is
// set. Path may be a doublestar glob.
type SchemaSource struct {
	Path string `yaml:"path,omitempty"`
	URL  string `yaml:"url,omitempty"`
	// Base is the base IRI for relative references (default: document location)
	Base string `yaml:"base,omitempty"`
	// Format is a format token such as "turtle" (default: inferred)
	Format string `yaml:"format,omitempty"`
}

// OutputConfig configures where generated code is written
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ReasonerConfig configures the consistency check run before closure
type ReasonerConfig struct {
	// Enabled runs the Datalog reasoner (default: true)
	Enabled *bool `yaml:"enabled,omitempty"`
}

// FetchConfig configures remote schema retrieval
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// PublishConfig configures publishing descriptors to the knowledge graph
type PublishConfig struct {
	// NATSURL enables publishing when set
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// SnapshotConfig configures saving the closed store to a KV bucket
type SnapshotConfig struct {
	// NATSURL enables snapshots when set
	NATSURL string `yaml:"nats_url,omitempty"`
	Bucket  string `yaml:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Output: OutputConfig{
			Dir: "gen",
		},
		Codegen: codegen.DefaultConfig(),
		Reasoner: ReasonerConfig{
			Enabled: &enabled,
		},
		Fetch: FetchConfig{
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
		},
		Publish: PublishConfig{
			Subject: "graph.ingest.entity",
		},
		Snapshot: SnapshotConfig{
			Bucket: "SEMSCHEMA_CLOSURE",
		},
	}
}

// ReasonerEnabled reports whether the consistency check runs.
func (c *Config) ReasonerEnabled() bool {
	return c.Reasoner.Enabled == nil || *c.Reasoner.Enabled
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	for i, s := range c.Schemas {
		if (s.Path == "") == (s.URL == "") {
			return fmt.Errorf("schemas[%d]: exactly one of path and url is required", i)
		}
		if s.Format != "" {
			if _, err := ingest.ParseFormat(s.Format); err != nil {
				return fmt.Errorf("schemas[%d]: %w", i, err)
			}
		}
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if err := c.Codegen.Validate(); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be at least 1")
	}
	if c.Publish.NATSURL != "" && c.Publish.Subject == "" {
		return fmt.Errorf("publish.subject is required when publishing")
	}
	if c.Snapshot.NATSURL != "" && c.Snapshot.Bucket == "" {
		return fmt.Errorf("snapshot.bucket is required when snapshots are enabled")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Environment variables in the file are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(file)
	return config, nil
}

// readFile parses a YAML file without applying defaults, so layered files
// only override what they set.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal([]byte(ssconfig.ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Schemas) > 0 {
		c.Schemas = other.Schemas
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}

	// Codegen
	if other.Codegen.BaseNamespace != "" {
		c.Codegen.BaseNamespace = other.Codegen.BaseNamespace
	}
	if other.Codegen.Mapping != "" {
		c.Codegen.Mapping = other.Codegen.Mapping
	}
	if len(other.Codegen.Aliases) > 0 {
		c.Codegen.Aliases = other.Codegen.Aliases
	}
	if other.Codegen.Workers != 0 {
		c.Codegen.Workers = other.Codegen.Workers
	}
	if other.Codegen.RuntimeImport != "" {
		c.Codegen.RuntimeImport = other.Codegen.RuntimeImport
	}

	if other.Reasoner.Enabled != nil {
		c.Reasoner.Enabled = other.Reasoner.Enabled
	}

	// Fetch
	if other.Fetch.Timeout != 0 {
		c.Fetch.Timeout = other.Fetch.Timeout
	}
	if other.Fetch.MaxAttempts != 0 {
		c.Fetch.MaxAttempts = other.Fetch.MaxAttempts
	}

	// NATS
	if other.Publish.NATSURL != "" {
		c.Publish.NATSURL = other.Publish.NATSURL
	}
	if other.Publish.Subject != "" {
		c.Publish.Subject = other.Publish.Subject
	}
	if other.Snapshot.NATSURL != "" {
		c.Snapshot.NATSURL = other.Snapshot.NATSURL
	}
	if other.Snapshot.Bucket != "" {
		c.Snapshot.Bucket = other.Snapshot.Bucket
	}
}

// resolvePaths makes relative schema paths and the output directory
// relative to dir.
func (c *Config) resolvePaths(dir string) {
	for i, s := range c.Schemas {
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			c.Schemas[i].Path = filepath.Join(dir, s.Path)
		}
	}
	if c.Output.Dir != "" && !filepath.IsAbs(c.Output.Dir) {
		c.Output.Dir = filepath.Join(dir, c.Output.Dir)
	}
}
