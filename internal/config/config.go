package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tenant string `yaml:"tenant"`
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type Store struct {
	// Backend selects the storage driver: mongo, postgres, mysql or memory.
	Backend  string `yaml:"backend"`
	Mongo    Mongo  `yaml:"mongo"`
	Postgres string `yaml:"postgres"`
	MySQL    string `yaml:"mysql"`
	// PollInterval drives the subscription emulation on the SQL backends,
	// e.g. "2s".
	PollInterval string `yaml:"poll_interval"`
}

// PollInterval parses the configured interval; defaults applied by
// LoadConfig guarantee it parses.
func (s Store) ParsedPollInterval() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Tenant == "" {
		c.Tenant = "tenant_demo_1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = "salesdash"
	}
	if c.Store.PollInterval == "" {
		c.Store.PollInterval = "2s"
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory":
	case "mongo":
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required for the mongo backend")
		}
	case "postgres":
		if c.Store.Postgres == "" {
			return fmt.Errorf("store.postgres is required for the postgres backend")
		}
	case "mysql":
		if c.Store.MySQL == "" {
			return fmt.Errorf("store.mysql is required for the mysql backend")
		}
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	if _, err := time.ParseDuration(c.Store.PollInterval); err != nil {
		return fmt.Errorf("invalid store.poll_interval: %w", err)
	}
	return nil
}
