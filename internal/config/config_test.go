package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := setEnv("HIGHCARD_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := setEnv("HIGHCARD_TOKEN_SECRET", "secret2")
	defer clear2()

	config = Config{}

	a := assert.New(t)
	cfg := Instance()
	a.Equal("postgres://highcard@localhost:5432/highcard?sslmode=disable", cfg.PGDSN)
	a.Equal(60, cfg.Game.DeckSize)
	a.Equal(4, cfg.Game.NumPlayers)
	a.Equal("debug", cfg.Log.Level)
	a.Equal("secret2", cfg.TokenSecret)

	// ensure that it's only loaded once
	_ = os.Setenv("HIGHCARD_TOKEN_SECRET", "secret3")
	// ensure we aren't using a pointer
	cfg.TokenSecret = "bad"
	cfg = Instance()
	a.Equal("secret2", cfg.TokenSecret)
}

func TestDefaults(t *testing.T) {
	clear := setEnv("HIGHCARD_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear()

	config = Config{}

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal("./sql", cfg.MigrationsPath)
	a.Equal(40, cfg.Game.DeckSize)
	a.Equal(12, cfg.Game.MaxCardValue)
	a.Equal(1, cfg.Game.PointsPerScore)
	a.Equal(60, cfg.Session.IdleGraceSeconds)
	a.Equal("", cfg.TokenSecret)
}

func setEnv(key, val string) func() {
	orig := os.Getenv(key)
	_ = os.Setenv(key, val)
	return func() {
		if orig == "" {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, orig)
		}
	}
}
