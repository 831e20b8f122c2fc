package config

import (
	"errors"
	"os"

	"blackjack-server/internal/util"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/playable/blackjack"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Store types
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config provides configuration for the blackjack server
type Config struct {
	loaded         bool
	Store          string `yaml:"store" envconfig:"store"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Log            struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Game blackjack.Options `yaml:"game"`
}

var config Config

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	cfg := Config{
		Store:          StoreMemory,
		PGDSN:          db.DefaultDSN,
		MigrationsPath: "sql",
		Game:           blackjack.DefaultOptions(),
	}
	cfg.Log.Level = "info"

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults and the environment are used instead
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("BJ_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if file != nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	if err := envconfig.Process("bj", &cfg); err != nil {
		return err
	}

	if cfg.Store != StoreMemory && cfg.Store != StorePostgres {
		return errors.New("store must be memory or postgres")
	}

	if err := cfg.Game.Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
