package config_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"casesync/internal/config"
)

func TestConfig_Roundtrip(t *testing.T) {
	cfg := config.NewConfig("/CASES", "/data/casesync")
	cfg.Remote = config.RemoteConfig{
		Type:     "s3",
		S3Bucket: "scans",
		S3Prefix: "incoming/",
		S3Region: "eu-central-1",
		PageSize: 250,
	}
	cfg.Cache.Encrypted = true

	m := &config.Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Root != cfg.Root {
		t.Errorf("Root = %q, want %q", got.Root, cfg.Root)
	}
	if got.Remote != cfg.Remote {
		t.Errorf("Remote = %+v, want %+v", got.Remote, cfg.Remote)
	}
	if got.Database != cfg.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, cfg.Database)
	}
	if got.Cache != cfg.Cache {
		t.Errorf("Cache = %+v, want %+v", got.Cache, cfg.Cache)
	}
	if got.Encryption != cfg.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, cfg.Encryption)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := config.NewConfig("/CASES", "/data/casesync")

	if cfg.PollInterval() != 5*time.Minute {
		t.Errorf("PollInterval() = %v, want 5m", cfg.PollInterval())
	}
	if cfg.DedupWindow() != 5*time.Minute {
		t.Errorf("DedupWindow() = %v, want 5m", cfg.DedupWindow())
	}
	if cfg.MatchThreshold != 0.15 {
		t.Errorf("MatchThreshold = %v, want 0.15", cfg.MatchThreshold)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", cfg.Parallelism)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
}

func TestConfig_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casesync.toml")
	cfg := config.NewConfig("/CASES", t.TempDir())

	if err := config.Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := config.ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.Root != "/CASES" {
		t.Errorf("Root = %q, want /CASES", got.Root)
	}

	// A second init must refuse to overwrite.
	if err := config.Init(path, cfg); err == nil {
		t.Error("second Init() error = nil, want already-exists error")
	}
}

func TestConfig_ReadMissingFile(t *testing.T) {
	if _, err := config.ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("ReadFromFile(missing) error = nil, want error")
	}
}
