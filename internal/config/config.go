// Package config assembles the storefront configuration on top of the core bot settings.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/storebot/core/config"
	coredatabase "github.com/m3rciful/storebot/core/database"
	"github.com/m3rciful/storebot/internal/events"
)

// RedisConfig points the session store at Redis. Sessions stay in memory when Addr is empty.
type RedisConfig struct {
	Addr       string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password   string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" envconfig:"REDIS_DB" validate:"gte=0"`
	Prefix     string        `yaml:"prefix" envconfig:"REDIS_SESSION_PREFIX"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" validate:"gte=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

// ManagerSeed describes a staff member created at startup.
type ManagerSeed struct {
	TelegramID int64  `yaml:"telegram_id" validate:"required"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Phone      string `yaml:"phone" validate:"required"`
	// Staff defaults to true; set false to revoke access without deleting the record.
	Staff *bool `yaml:"is_staff"`
}

// IsStaff resolves the optional flag.
func (m ManagerSeed) IsStaff() bool { return m.Staff == nil || *m.Staff }

// SeedConfig lists reference data loaded by the bootstrap seeders.
type SeedConfig struct {
	Managers    []ManagerSeed `yaml:"managers" validate:"dive"`
	CatalogPath string        `yaml:"catalog_path" envconfig:"SEED_CATALOG_PATH"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	Events   events.Config       `yaml:"events"`
	Seed     SeedConfig          `yaml:"seed"`
}

const defaultSessionTTL = 24 * time.Hour

// Load reads the YAML file at path, applies environment overrides and normalizes the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	cfg.Database = cfg.Database.WithDefaults()
	if cfg.Redis.SessionTTL == 0 {
		cfg.Redis.SessionTTL = defaultSessionTTL
	}
	if cfg.Events.Enabled() && strings.TrimSpace(cfg.Events.Topic) == "" {
		return nil, fmt.Errorf("events.topic is required when events.brokers is set")
	}
	seen := make(map[int64]struct{}, len(cfg.Seed.Managers))
	for _, m := range cfg.Seed.Managers {
		if _, dup := seen[m.TelegramID]; dup {
			return nil, fmt.Errorf("seed.managers: duplicate telegram_id %d", m.TelegramID)
		}
		seen[m.TelegramID] = struct{}{}
	}
	return &cfg, nil
}

// CoreConfig exposes the embedded core settings to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}
