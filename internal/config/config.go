package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from unprefixed environment variables, e.g. DB_PATH.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	DBPath     string `envconfig:"DB_PATH" default:"/data/healthlog.db"`

	// FlatBackend is "badger" (on disk at FlatPath) or "memory".
	FlatBackend string `envconfig:"FLAT_BACKEND" default:"badger"`
	FlatPath    string `envconfig:"FLAT_PATH" default:"/data/flat"`

	// Timezone names the IANA zone whose midnight starts a day. Empty means
	// the process's local zone.
	Timezone     string `envconfig:"TIMEZONE" default:""`
	LibraryLimit int    `envconfig:"LIBRARY_LIMIT" default:"20"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile   string `envconfig:"LOG_FILE" default:""`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.FlatBackend {
	case "badger", "memory":
	default:
		return fmt.Errorf("unsupported FLAT_BACKEND: %s", c.FlatBackend)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
