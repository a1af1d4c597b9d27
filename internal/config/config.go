// Package config provides configuration management for the node registry.
//
// Configuration is a single YAML file holding the token signing secret, the
// static user list, and the startup parameters of each backing service. It is
// loaded once by the composition root and passed explicitly to the components
// that need it.
//
// See FindConfigPath for the file search order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAuthHeader carries the session token on authenticated requests
	DefaultAuthHeader = "authentication"
	// DefaultTokenTTL is the session token lifetime
	DefaultTokenTTL = 24 * time.Hour
	// DefaultAnnounceSubject is the NATS subject for publish announcements
	DefaultAnnounceSubject = "nodereg.published"
)

var (
	ErrMissingSecret = errors.New("auth.secret is required")
	ErrNoUsers       = errors.New("auth.users must list at least one user")
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	cfg.applyEnv()

	return cfg, path, nil
}

// Parse decodes YAML config data and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// DefaultConfig returns sensible defaults for a new installation.
// The result has no secret and no users and will not pass Validate.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = Duration(DefaultTokenTTL)
	}
	if c.Auth.Header == "" {
		c.Auth.Header = DefaultAuthHeader
	}

	if c.HTTP.RequestTimeout == 0 {
		c.HTTP.RequestTimeout = Duration(5 * time.Second)
	}
	if c.HTTP.LoginRate == 0 {
		c.HTTP.LoginRate = 1
	}
	if c.HTTP.LoginBurst == 0 {
		c.HTTP.LoginBurst = 5
	}

	if c.Services.Dispatcher.Addr == "" {
		c.Services.Dispatcher.Addr = ":3000"
	}
	if c.Services.PushChannel.Addr == "" {
		c.Services.PushChannel.Addr = ":3001"
	}
	if c.Services.Datastore.Path == "" {
		c.Services.Datastore.Path = "./var/nodereg.db"
	}
	if c.Services.Storage.RepoPath == "" {
		c.Services.Storage.RepoPath = "./var/blocks"
	}
	if c.Services.Storage.SwarmAddr == "" {
		c.Services.Storage.SwarmAddr = "0.0.0.0:0"
	}
	if c.Services.Storage.Announce.Subject == "" {
		c.Services.Storage.Announce.Subject = DefaultAnnounceSubject
	}
	if c.Services.StartupTimeout == 0 {
		c.Services.StartupTimeout = Duration(30 * time.Second)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv applies environment overrides
func (c *Config) applyEnv() {
	if secret := os.Getenv(EnvSecret); secret != "" {
		c.Auth.Secret = secret
	}
}

// Validate checks that the config can boot the service
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return ErrMissingSecret
	}
	if len(c.Auth.Users) == 0 {
		return ErrNoUsers
	}
	if c.Auth.TokenTTL.Duration() <= 0 {
		return fmt.Errorf("auth.token_ttl %s: must be positive", c.Auth.TokenTTL.Duration())
	}
	for i, u := range c.Auth.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("auth.users[%d]: username and password_hash are required", i)
		}
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Dispatcher: %s, Push channel: %s\n",
		c.Services.Dispatcher.Addr, c.Services.PushChannel.Addr)
	summary += fmt.Sprintf("Datastore: %s, Storage repo: %s (swarm %s, %d peers)\n",
		c.Services.Datastore.Path, c.Services.Storage.RepoPath,
		c.Services.Storage.SwarmAddr, len(c.Services.Storage.Peers))
	summary += fmt.Sprintf("Users: %d, token ttl: %s", len(c.Auth.Users), c.Auth.TokenTTL.Duration())
	return summary
}
