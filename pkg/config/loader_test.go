package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/pkg/config"
)

type testConfig struct {
	Name    string        `env:"TEST_CFG_NAME,required"`
	Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
}

func TestLoad(t *testing.T) {
	t.Run("parses env vars with defaults", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "fablepress")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "fablepress", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "fablepress")
		t.Setenv("TEST_CFG_PORT", "9090")
		t.Setenv("TEST_CFG_TIMEOUT", "250ms")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	})

	t.Run("missing required var", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "placeholder") // registers cleanup
		require.NoError(t, os.Unsetenv("TEST_CFG_NAME"))

		var cfg testConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required var", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "placeholder") // registers cleanup
		require.NoError(t, os.Unsetenv("TEST_CFG_NAME"))

		assert.Panics(t, func() {
			var cfg testConfig
			config.MustLoad(&cfg)
		})
	})
}
