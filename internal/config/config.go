package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	LLM       LLMConfig       `yaml:"llm"`
	Speech    SpeechConfig    `yaml:"speech"`
	Session   SessionConfig   `yaml:"session"`
	Interpret InterpretConfig `yaml:"interpret"`
	Events    EventsConfig    `yaml:"events"`
	// Timezone is the IANA zone that defines training days. Empty means the
	// host's local zone.
	Timezone string `yaml:"timezone"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	// Backend is "postgres" (default) or "memory".
	Backend  string `yaml:"backend"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	// Temperature defaults to 0.1 when unset; an explicit 0 is kept.
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the directory holding the SQLite session database.
	Path string `yaml:"path"`
}

type InterpretConfig struct {
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
	StoreTimeout   time.Duration `yaml:"store_timeout"`
}

// EventsConfig enables record change publishing to Kafka when Brokers is set.
type EventsConfig struct {
	Brokers []string      `yaml:"brokers"`
	Topic   string        `yaml:"topic"`
	Timeout time.Duration `yaml:"timeout"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix GYMCHAT_ and underscore-separated paths:
//
//	GYMCHAT_SERVER_HOST, GYMCHAT_SERVER_PORT,
//	GYMCHAT_DB_BACKEND, GYMCHAT_DB_HOST, GYMCHAT_DB_PORT, GYMCHAT_DB_NAME,
//	GYMCHAT_DB_USER, GYMCHAT_DB_PASSWORD, GYMCHAT_DB_SSLMODE,
//	GYMCHAT_AUTH_API_KEY,
//	GYMCHAT_LLM_ENDPOINT, GYMCHAT_LLM_API_KEY, GYMCHAT_LLM_MODEL,
//	GYMCHAT_SPEECH_ENDPOINT, GYMCHAT_SPEECH_API_KEY,
//	GYMCHAT_SESSION_BACKEND, GYMCHAT_SESSION_PATH, GYMCHAT_TIMEZONE,
//	GYMCHAT_EVENTS_BROKERS (comma-separated), GYMCHAT_EVENTS_TOPIC
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := map[string]*string{
		"GYMCHAT_SERVER_HOST":     &cfg.Server.Host,
		"GYMCHAT_DB_BACKEND":      &cfg.Database.Backend,
		"GYMCHAT_DB_HOST":         &cfg.Database.Host,
		"GYMCHAT_DB_NAME":         &cfg.Database.Name,
		"GYMCHAT_DB_USER":         &cfg.Database.User,
		"GYMCHAT_DB_PASSWORD":     &cfg.Database.Password,
		"GYMCHAT_DB_SSLMODE":      &cfg.Database.SSLMode,
		"GYMCHAT_AUTH_API_KEY":    &cfg.Auth.APIKey,
		"GYMCHAT_LLM_ENDPOINT":    &cfg.LLM.Endpoint,
		"GYMCHAT_LLM_API_KEY":     &cfg.LLM.APIKey,
		"GYMCHAT_LLM_MODEL":       &cfg.LLM.Model,
		"GYMCHAT_SPEECH_ENDPOINT": &cfg.Speech.Endpoint,
		"GYMCHAT_SPEECH_API_KEY":  &cfg.Speech.APIKey,
		"GYMCHAT_SESSION_BACKEND": &cfg.Session.Backend,
		"GYMCHAT_SESSION_PATH":    &cfg.Session.Path,
		"GYMCHAT_TIMEZONE":        &cfg.Timezone,
		"GYMCHAT_EVENTS_TOPIC":    &cfg.Events.Topic,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("GYMCHAT_EVENTS_BROKERS"); v != "" {
		cfg.Events.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Events.Brokers = append(cfg.Events.Brokers, b)
			}
		}
	}

	ints := map[string]*int{
		"GYMCHAT_SERVER_PORT": &cfg.Server.Port,
		"GYMCHAT_DB_PORT":     &cfg.Database.Port,
	}
	for env, dst := range ints {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "postgres"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}
	if cfg.LLM.Temperature == nil {
		t := 0.1
		cfg.LLM.Temperature = &t
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "gymchat"
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "gymchat.records"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Backend {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
		if c.Database.MaxConns < 0 {
			return fmt.Errorf("database.max_conns must not be negative")
		}
	default:
		return fmt.Errorf("database.backend %q is not supported", c.Database.Backend)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		if c.Session.Path == "" {
			return fmt.Errorf("session.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("session.backend %q is not supported", c.Session.Backend)
	}
	if t := *c.LLM.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Endpoint != "" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm.endpoint is set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}
