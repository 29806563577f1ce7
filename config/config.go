package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// StorageConfig selects where snapshot documents live. Driver is "file"
// (default) or "postgres".
type StorageConfig struct {
	Driver           string `yaml:"driver"`
	Dir              string `yaml:"dir"`
	AccountsDocument string `yaml:"accounts_document"`
	FlightsDocument  string `yaml:"flights_document"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig is optional: an empty Addr disables the snapshot cache and the
// cross-process write lock.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	AuditTopic         string   `yaml:"audit_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.AuditTopic != ""
}

// BookingConfig tunes the booking CLI. LogEvents also writes every domain
// event to the process log as it happens.
type BookingConfig struct {
	SnapshotCacheTTL int  `yaml:"snapshot_cache_ttl_seconds"`
	WriteLockTTL     int  `yaml:"write_lock_ttl_seconds"`
	PrintEventLog    bool `yaml:"print_event_log"`
	LogEvents        bool `yaml:"log_events"`
}

type WorkerConfig struct {
	PublishTimeoutSeconds int `yaml:"publish_timeout_seconds"`
	PublishRetries        int `yaml:"publish_retries"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data"
	}
	if c.Storage.AccountsDocument == "" {
		c.Storage.AccountsDocument = "accounts.json"
	}
	if c.Storage.FlightsDocument == "" {
		c.Storage.FlightsDocument = "flights.json"
	}
	if c.Booking.SnapshotCacheTTL == 0 {
		c.Booking.SnapshotCacheTTL = 60
	}
	if c.Booking.WriteLockTTL == 0 {
		c.Booking.WriteLockTTL = 30
	}
	if c.Worker.PublishTimeoutSeconds == 0 {
		c.Worker.PublishTimeoutSeconds = 5
	}
	if c.Worker.PublishRetries == 0 {
		c.Worker.PublishRetries = 3
	}
}
