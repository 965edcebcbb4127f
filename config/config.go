package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultIDSeparator joins a system id and a local id into a persisted key.
const DefaultIDSeparator = "#::#"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	System     SystemConfig     `yaml:"system"`
	ACAPI      ACAPIConfig      `yaml:"acapi"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Security   SecurityConfig   `yaml:"security"`
	Mail       MailConfig       `yaml:"mail"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Events     EventsConfig     `yaml:"events"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// SystemConfig identifies this deployment. Every persisted key is
// SystemID + IDSeparator + local id.
type SystemConfig struct {
	SystemID    string `yaml:"system_id"`
	IDSeparator string `yaml:"id_separator"`
}

// Key builds the persisted key for a local id of this system.
func (s SystemConfig) Key(localID string) string {
	return s.Join(s.SystemID, localID)
}

// Join builds a persisted key from an explicit system id.
func (s SystemConfig) Join(systemID, localID string) string {
	return systemID + s.IDSeparator + localID
}

// Split breaks a persisted key into its system id and local id.
// A key without the separator is returned as a local id.
func (s SystemConfig) Split(key string) (systemID, localID string) {
	i := strings.Index(key, s.IDSeparator)
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+len(s.IDSeparator):]
}

// ACAPIConfig points at the vendor AC control API.
type ACAPIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	HTTPProxy      string        `yaml:"http_proxy"`
}

// SchedulerConfig holds the task scheduler configuration.
type SchedulerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	Timezone        string        `yaml:"timezone"`
}

// Location resolves Timezone. An empty Timezone means the host's zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SecurityConfig holds the in-home security monitor configuration.
type SecurityConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	CooldownMinutes int           `yaml:"cooldown_minutes"`
	Cooldown        time.Duration `yaml:"-"`
}

// MailConfig holds the SMTP settings for notification emails.
// An empty Host disables email delivery.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// EventsConfig controls publishing of domain events to RabbitMQ.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Queue   string `yaml:"queue"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Dev        bool   `yaml:"dev"`
	File       string `yaml:"file"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8084
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.System.SystemID == "" {
		cfg.System.SystemID = "2025b.integrative.airwise"
	}
	if cfg.System.IDSeparator == "" {
		cfg.System.IDSeparator = DefaultIDSeparator
	}

	if cfg.ACAPI.BaseURL == "" {
		cfg.ACAPI.BaseURL = "http://localhost:3001/api/ac"
	}
	cfg.ACAPI.BaseURL = strings.TrimRight(cfg.ACAPI.BaseURL, "/")
	if cfg.ACAPI.TimeoutSeconds <= 0 {
		cfg.ACAPI.TimeoutSeconds = 60
	}
	cfg.ACAPI.Timeout = time.Duration(cfg.ACAPI.TimeoutSeconds) * time.Second

	if cfg.Scheduler.IntervalSeconds <= 0 {
		cfg.Scheduler.IntervalSeconds = 60
	}
	cfg.Scheduler.Interval = time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second

	if cfg.Security.IntervalSeconds <= 0 {
		cfg.Security.IntervalSeconds = 60
	}
	cfg.Security.Interval = time.Duration(cfg.Security.IntervalSeconds) * time.Second
	if cfg.Security.CooldownMinutes <= 0 {
		cfg.Security.CooldownMinutes = 30
	}
	cfg.Security.Cooldown = time.Duration(cfg.Security.CooldownMinutes) * time.Minute

	if cfg.Mail.Port <= 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "noreply@airwise.com"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Events.Queue == "" {
		cfg.Events.Queue = "airwise.notifications"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 7
	}
}
