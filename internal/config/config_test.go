package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Auth:     AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestValidate_ResultBoundsOrdered(t *testing.T) {
	cfg := validConfig()
	cfg.Index.DefaultResults = 200
	cfg.Index.MaxResults = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_results exceeds max_results")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Index.BatchSize != 50 {
		t.Errorf("expected BatchSize=50, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.DefaultResults != 15 {
		t.Errorf("expected DefaultResults=15, got %d", cfg.Index.DefaultResults)
	}
	if cfg.Storage.KeyPrefix != "nomadmatch:" {
		t.Errorf("expected KeyPrefix='nomadmatch:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.ChatModel != "gpt-3.5-turbo" {
		t.Errorf("expected default chat model, got %q", cfg.Embedding.ChatModel)
	}
	if cfg.Auth.TokenTTLMin != 60*24*7 {
		t.Errorf("expected week-long token ttl, got %d", cfg.Auth.TokenTTLMin)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:   IndexConfig{HNSWM: 16, HNSWEFConstruct: 200, BatchSize: 10, DefaultResults: 5, MaxResults: 50},
		Storage: StorageConfig{KeyPrefix: "custom:"},
		Data:    DataConfig{Dirs: []string{"/srv/data"}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if len(cfg.Data.Dirs) != 1 || cfg.Data.Dirs[0] != "/srv/data" {
		t.Errorf("expected data dirs preserved, got %v", cfg.Data.Dirs)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("NOMADMATCH_TEST_SECRET", "from-env")

	in := []byte("secret: ${NOMADMATCH_TEST_SECRET}\nmodel: ${NOMADMATCH_TEST_MODEL:-fallback}\n")
	out := string(expandEnvVars(in))

	if out != "secret: from-env\nmodel: fallback\n" {
		t.Errorf("expanded = %q", out)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
auth:
  jwt_secret: test-secret
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	// defaults applied on top of the file
	if cfg.Index.HNSWM != 32 {
		t.Errorf("HNSWM = %d, want default 32", cfg.Index.HNSWM)
	}
}
