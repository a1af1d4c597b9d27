package config

import (
	"time"

	"nodereg/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Auth     AuthConfig     `yaml:"auth"`
	HTTP     HTTPConfig     `yaml:"http"`
	Services ServicesConfig `yaml:"services"`
	Log      LogConfig      `yaml:"log"`
	Seed     []SeedNode     `yaml:"seed,omitempty"`
	// SeedFile is a YAML or JSON node list loaded alongside Seed
	SeedFile string `yaml:"seed_file,omitempty"`
}

// AuthConfig holds the shared signing secret and the static user list
type AuthConfig struct {
	Secret   string              `yaml:"secret"`
	TokenTTL Duration            `yaml:"token_ttl"`
	Header   string              `yaml:"header"`
	Users    []domain.Credential `yaml:"users"`
}

// HTTPConfig holds request handling settings
type HTTPConfig struct {
	RequestTimeout Duration `yaml:"request_timeout"`
	LoginRate      float64  `yaml:"login_rate"` // login attempts per second per client
	LoginBurst     int      `yaml:"login_burst"`
}

// ServicesConfig holds per-service startup parameters
type ServicesConfig struct {
	Dispatcher     ListenConfig    `yaml:"dispatcher"`
	PushChannel    ListenConfig    `yaml:"push_channel"`
	Datastore      DatastoreConfig `yaml:"datastore"`
	Storage        StorageConfig   `yaml:"storage"`
	StartupTimeout Duration        `yaml:"startup_timeout"`
}

// ListenConfig is a TCP listen address
type ListenConfig struct {
	Addr string `yaml:"addr"`
}

// DatastoreConfig holds embedded datastore settings
type DatastoreConfig struct {
	Path string `yaml:"path"`
	// MustExist refuses to create a missing database file. When off, a
	// missing file is created and migrated.
	MustExist bool `yaml:"must_exist"`
}

// StorageConfig holds content-addressed storage client settings
type StorageConfig struct {
	RepoPath  string         `yaml:"repo_path"`
	SwarmAddr string         `yaml:"swarm_addr"`
	Peers     []string       `yaml:"peers,omitempty"` // peer swarm base URLs
	Announce  AnnounceConfig `yaml:"announce"`
}

// AnnounceConfig configures publish announcements over NATS.
// Announcements are disabled when NATSURL is empty.
type AnnounceConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// SeedNode is a node inserted on first start when the datastore is empty
type SeedNode struct {
	Title  string `yaml:"title"`
	Active *bool  `yaml:"active,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
