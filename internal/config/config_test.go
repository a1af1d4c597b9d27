package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nodereg/internal/domain"
)

const sampleConfig = `
auth:
  secret: s3cret
  token_ttl: 2h
  users:
    - username: admin
      password_hash: $2a$10$abcdefghijklmnopqrstuv
http:
  request_timeout: 3s
services:
  dispatcher:
    addr: 127.0.0.1:8080
  datastore:
    path: /tmp/nodes.db
    must_exist: true
  storage:
    repo_path: /tmp/blocks
    peers:
      - http://10.0.0.2:4001
seed:
  - title: bootstrap-peer
seed_file: /etc/nodereg/nodes.yaml
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Auth.Header != DefaultAuthHeader {
		t.Errorf("Auth.Header = %q, want %q", cfg.Auth.Header, DefaultAuthHeader)
	}
	if cfg.Auth.TokenTTL.Duration() != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %s, want 24h", cfg.Auth.TokenTTL.Duration())
	}
	if cfg.Services.Datastore.Path == "" {
		t.Error("Services.Datastore.Path should not be empty")
	}
	if cfg.Services.Storage.SwarmAddr != "0.0.0.0:0" {
		t.Errorf("Services.Storage.SwarmAddr = %q, want 0.0.0.0:0", cfg.Services.Storage.SwarmAddr)
	}
	if cfg.Services.StartupTimeout.Duration() <= 0 {
		t.Error("Services.StartupTimeout should be positive")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Auth.Secret != "s3cret" {
		t.Errorf("Auth.Secret = %q, want s3cret", cfg.Auth.Secret)
	}
	if cfg.Auth.TokenTTL.Duration() != 2*time.Hour {
		t.Errorf("Auth.TokenTTL = %s, want 2h", cfg.Auth.TokenTTL.Duration())
	}
	if len(cfg.Auth.Users) != 1 || cfg.Auth.Users[0].Username != "admin" {
		t.Fatalf("Auth.Users = %+v, want one admin user", cfg.Auth.Users)
	}
	if cfg.HTTP.RequestTimeout.Duration() != 3*time.Second {
		t.Errorf("HTTP.RequestTimeout = %s, want 3s", cfg.HTTP.RequestTimeout.Duration())
	}
	if cfg.Services.Dispatcher.Addr != "127.0.0.1:8080" {
		t.Errorf("Dispatcher.Addr = %q", cfg.Services.Dispatcher.Addr)
	}
	// Defaults fill what the file leaves out
	if cfg.Services.PushChannel.Addr != ":3001" {
		t.Errorf("PushChannel.Addr = %q, want default :3001", cfg.Services.PushChannel.Addr)
	}
	if !cfg.Services.Datastore.MustExist {
		t.Error("Datastore.MustExist should be true")
	}
	if len(cfg.Services.Storage.Peers) != 1 {
		t.Errorf("Storage.Peers = %v, want one peer", cfg.Services.Storage.Peers)
	}
	if cfg.Services.Storage.Announce.Subject != DefaultAnnounceSubject {
		t.Errorf("Announce.Subject = %q, want default", cfg.Services.Storage.Announce.Subject)
	}
	if len(cfg.Seed) != 1 || cfg.Seed[0].Title != "bootstrap-peer" || cfg.Seed[0].Active != nil {
		t.Errorf("Seed = %+v", cfg.Seed)
	}
	if cfg.SeedFile != "/etc/nodereg/nodes.yaml" {
		t.Errorf("SeedFile = %q", cfg.SeedFile)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("auth: [unclosed")); err == nil {
		t.Error("Parse() should fail on malformed YAML")
	}
	if _, err := Parse([]byte("http:\n  request_timeout: soon\n")); err == nil {
		t.Error("Parse() should fail on malformed duration")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Auth.Secret = "secret"
		cfg.Auth.Users = []domain.Credential{{Username: "admin", PasswordHash: "hash"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.Secret = "  " }, true},
		{"no users", func(c *Config) { c.Auth.Users = nil }, true},
		{"user without hash", func(c *Config) { c.Auth.Users[0].PasswordHash = "" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
		{"negative token ttl", func(c *Config) { c.Auth.TokenTTL = Duration(-time.Hour) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSecretFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(sampleConfig), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvSecret, "from-env")

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Errorf("Auth.Secret = %q, want from-env", cfg.Auth.Secret)
	}
}

func TestLoadFromPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(sampleConfig), 0600); err != nil {
		t.Fatal(err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Auth.Users[0].PasswordHash != "$2a$10$abcdefghijklmnopqrstuv" {
		t.Errorf("PasswordHash = %q", loaded.Auth.Users[0].PasswordHash)
	}
	if len(loaded.Services.Storage.Peers) != 1 || loaded.Services.Storage.Peers[0] != "http://10.0.0.2:4001" {
		t.Errorf("Storage.Peers = %v", loaded.Services.Storage.Peers)
	}

	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromPath() should fail for a missing file")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0600); err != nil {
		t.Fatal(err)
	}

	t.Chdir(tmpDir)

	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
