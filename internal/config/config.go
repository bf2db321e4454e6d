package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for casesync.
type Config struct {
	Root        string `toml:"root"`         // remote folder to reconcile, e.g. "/CASES"
	BaseDir     string `toml:"base_dir"`     // local data directory
	LogDir      string `toml:"log_dir"`      // log file directory
	Actor       string `toml:"actor"`        // default actor recorded in audit entries
	Parallelism int    `toml:"parallelism"`  // concurrent downloads per sync cycle

	PollIntervalSeconds int     `toml:"poll_interval_seconds"` // time between scheduled syncs
	DedupWindowSeconds  int     `toml:"dedup_window_seconds"`  // near-duplicate time window
	MatchThreshold      float64 `toml:"match_threshold"`       // minimum slot-guess confidence

	Remote     RemoteConfig     `toml:"remote"`
	Database   DatabaseConfig   `toml:"database"`
	Cache      CacheConfig      `toml:"cache"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// RemoteConfig represents configuration for the remote storage client.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type RemoteConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"` // local directory served as the remote tree

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	PageSize int `toml:"page_size,omitempty"` // listing page size; 0 uses the backend default
}

// DatabaseConfig represents configuration for the suggestion store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// CacheConfig represents configuration for the local content cache.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CacheConfig struct {
	Type      string `toml:"type"`                // "none", "memory", or "filesystem"
	Dir       string `toml:"dir,omitempty"`       // only used for type=filesystem
	Encrypted bool   `toml:"encrypted,omitempty"` // encrypt cached bytes at rest (filesystem only)
}

// EncryptionConfig holds paths to the age key pair used for the encrypted
// content cache.
type EncryptionConfig struct {
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with the provided values and sensible defaults.
func NewConfig(root, baseDir string) *Config {
	return &Config{
		Root:                root,
		BaseDir:             baseDir,
		LogDir:              filepath.Join(baseDir, "log"),
		Actor:               "casesync",
		Parallelism:         4,
		PollIntervalSeconds: 300,
		DedupWindowSeconds:  300,
		MatchThreshold:      0.15,
		Remote:              RemoteConfig{Type: "filesystem"},
		Database:            DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "data")},
		Cache:               CacheConfig{Type: "filesystem", Dir: filepath.Join(baseDir, "cache")},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "casesync.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "casesync.key"),
		},
	}
}

// PollInterval returns the scheduled sync interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DedupWindow returns the near-duplicate window as a duration.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.DedupWindowSeconds) * time.Second
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
