package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the winter-feast application.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Admin    AdminConfig    `yaml:"admin"`
	Uploads  UploadsConfig  `yaml:"uploads"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig holds the session store connection configuration.
type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// AdminConfig holds the seeded administrator credentials.
type AdminConfig struct {
	Nickname string `yaml:"nickname"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// UploadsConfig holds menu image upload settings.
type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	MaxSizeBytes int64  `yaml:"max_size_bytes"`
}

// Load reads configuration from a YAML file, then applies environment
// variable overrides. A missing file is not an error; defaults plus the
// environment must be enough to start.
func Load(filename string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session secret is required (set session.secret or SESSION_SECRET)")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Database: "winter_feast"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Session:  SessionConfig{TTLMinutes: 120},
		Admin:    AdminConfig{Nickname: "Admin", Email: "admin@hogwarts.feast"},
		Uploads:  UploadsConfig{Dir: "static/menu", MaxSizeBytes: 16 << 20},
	}
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "PGHOST")
	setString(&c.Database.User, "PGUSER")
	setString(&c.Database.Password, "PGPASSWORD")
	setString(&c.Database.Database, "PGDATABASE")
	if err := setInt(&c.Database.Port, "PGPORT"); err != nil {
		return err
	}

	setString(&c.Redis.Host, "REDIS_HOST")
	if err := setInt(&c.Redis.Port, "REDIS_PORT"); err != nil {
		return err
	}

	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.Uploads.Dir, "UPLOAD_DIR")

	if err := setInt(&c.HTTP.Port, "HTTP_PORT"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.Database.User), url.QueryEscape(c.Database.Password),
		c.Database.Host, c.Database.Port, c.Database.Database)
}

// RedisAddr returns the host:port address of the session store.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
