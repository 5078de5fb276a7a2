package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Supported values for Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config describes either a PostgreSQL server or a SQLite file. Host
// through SSLMode apply to postgres, Path to sqlite3.
type Config struct {
	Driver          string `toml:"driver"`
	Path            string `toml:"path"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env holds the variable name for each overridable field. Blank names
// are skipped.
type Env struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

type textField struct {
	dst      *string
	overlay  string
	fallback string
	env      string
}

type intField struct {
	dst      *int
	overlay  int
	fallback int
	env      string
}

// fields pairs every setting with its default, its overlay value, and
// its variable name. Password, Name and User have no default.
func (c *Config) fields(overlay *Config, env *Env) ([]textField, []intField) {
	if overlay == nil {
		overlay = &Config{}
	}
	if env == nil {
		env = &Env{}
	}

	text := []textField{
		{&c.Driver, overlay.Driver, DriverSQLite, env.Driver},
		{&c.Path, overlay.Path, "stark.db", env.Path},
		{&c.Host, overlay.Host, "localhost", env.Host},
		{&c.Name, overlay.Name, "", env.Name},
		{&c.User, overlay.User, "", env.User},
		{&c.Password, overlay.Password, "", env.Password},
		{&c.SSLMode, overlay.SSLMode, "disable", env.SSLMode},
		{&c.ConnMaxLifetime, overlay.ConnMaxLifetime, "15m", env.ConnMaxLifetime},
		{&c.ConnTimeout, overlay.ConnTimeout, "5s", env.ConnTimeout},
	}
	ints := []intField{
		{&c.Port, overlay.Port, 5432, env.Port},
		{&c.MaxOpenConns, overlay.MaxOpenConns, 25, env.MaxOpenConns},
		{&c.MaxIdleConns, overlay.MaxIdleConns, 5, env.MaxIdleConns},
	}
	return text, ints
}

// Finalize fills defaults, applies env overrides, then validates.
func (c *Config) Finalize(env *Env) error {
	text, ints := c.fields(nil, env)

	for _, f := range text {
		if *f.dst == "" {
			*f.dst = f.fallback
		}
		if v := lookup(f.env); v != "" {
			*f.dst = v
		}
	}
	for _, f := range ints {
		if *f.dst == 0 {
			*f.dst = f.fallback
		}
		if n, err := strconv.Atoi(lookup(f.env)); err == nil {
			*f.dst = n
		}
	}

	return c.validate()
}

// Merge copies every non-zero field of overlay.
func (c *Config) Merge(overlay *Config) {
	text, ints := c.fields(overlay, nil)
	for _, f := range text {
		if f.overlay != "" {
			*f.dst = f.overlay
		}
	}
	for _, f := range ints {
		if f.overlay != 0 {
			*f.dst = f.overlay
		}
	}
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn is the database/sql connection string. SQLite connections enforce
// foreign keys so achievement cascades hold.
func (c *Config) Dsn() string {
	if c.Driver == DriverSQLite {
		return "file:" + c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// MigrateURL is the URL form golang-migrate drivers expect.
func (c *Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// SQLDriver is the database/sql driver registered for Driver.
func (c *Config) SQLDriver() string {
	if c.Driver == DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("path required")
		}
	case DriverPostgres:
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	default:
		return fmt.Errorf("unsupported driver: %q", c.Driver)
	}

	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
