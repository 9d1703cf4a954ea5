package config

import (
	"os"

	"highcard-server/internal/util"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the high card server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	TokenSecret    string `yaml:"tokenSecret" envconfig:"token_secret"`
	Game           struct {
		DeckSize       int `yaml:"deckSize" envconfig:"deck_size"`
		NumPlayers     int `yaml:"numPlayers" envconfig:"num_players"`
		MaxCardValue   int `yaml:"maxCardValue" envconfig:"max_card_value"`
		PointsPerScore int `yaml:"pointsPerScore" envconfig:"points_per_score"`
	} `yaml:"game"`
	Session struct {
		// IdleGraceSeconds is how long a session without clients survives
		// before the registry reaps it
		IdleGraceSeconds int `yaml:"idleGraceSeconds" envconfig:"idle_grace_seconds"`
	} `yaml:"session"`
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

var config Config

// DefaultConfig returns the configuration before any file or environment overrides
func DefaultConfig() Config {
	var c Config
	c.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	c.MigrationsPath = "./sql"
	c.Game.DeckSize = 40
	c.Game.NumPlayers = 4
	c.Game.MaxCardValue = 12
	c.Game.PointsPerScore = 1
	c.Session.IdleGraceSeconds = 60

	return c
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
// Precedence, lowest to highest: defaults, the YAML config file, then
// environment variables. A .env file is read into the environment first.
func Load() error {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	configFile := util.Getenv("HIGHCARD_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		err = yaml.NewDecoder(file).Decode(&cfg)
		_ = file.Close()

		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("highcard", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
