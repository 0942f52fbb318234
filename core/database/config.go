package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST" validate:"required"`
	Port           int    `yaml:"port" envconfig:"DB_PORT" validate:"gte=0,lte=65535"`
	User           string `yaml:"user" envconfig:"DB_USER" validate:"required"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME" validate:"required"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS" validate:"gte=0"`
	// MigrationsDir is resolved against the working directory when relative.
	MigrationsDir string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

const (
	defaultPort          = 5432
	defaultSSLMode       = "disable"
	defaultMaxConns      = 10
	defaultMigrationsDir = "migrations"
)

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.SSLMode == "" {
		c.SSLMode = defaultSSLMode
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConns
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = defaultMigrationsDir
	}
	return c
}

// DSN renders the lib/pq keyword form.
func (c Config) DSN() string {
	c = c.WithDefaults()
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=%s",
		quoteValue(c.User), quoteValue(c.Password), c.Host, c.Port, quoteValue(c.Name), c.SSLMode)
}

// URL renders the postgres:// form expected by golang-migrate.
func (c Config) URL() string {
	c = c.WithDefaults()
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

var pqEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteValue quotes a keyword/value connection parameter when needed.
func quoteValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + pqEscaper.Replace(v) + "'"
}
