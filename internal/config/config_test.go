// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "formrun", cfg.Logger.ServiceName)

	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Browser.IgnoreTLSErrors)

	assert.Equal(t, 60*time.Second, cfg.Network.NavigationTimeout)

	assert.Equal(t, "http://localhost:3000/paste-json", cfg.Run.TargetURL)
	assert.Equal(t, "#json-text", cfg.Run.InputSelector)
	assert.Equal(t, "#submit-button", cfg.Run.TriggerSelector)
	assert.Equal(t, 10*time.Second, cfg.Run.ElementTimeout)
	assert.Equal(t, 2*time.Second, cfg.Run.SettleDelay)

	require.NoError(t, cfg.Validate(), "default config must validate")
}

func TestNewConfigFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("run.target_url", "https://example.test/form")
	v.Set("run.element_timeout", "30s")
	v.Set("browser.headless", false)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/form", cfg.Run.TargetURL)
	assert.Equal(t, 30*time.Second, cfg.Run.ElementTimeout)
	assert.False(t, cfg.Browser.Headless)
}

func TestRunConfigValidate(t *testing.T) {
	valid := func() RunConfig {
		return RunConfig{
			TargetURL:       "http://localhost:3000/paste-json",
			InputSelector:   "#json-text",
			TriggerSelector: "#submit-button",
			ElementTimeout:  10 * time.Second,
			SettleDelay:     2 * time.Second,
		}
	}

	t.Run("valid", func(t *testing.T) {
		r := valid()
		assert.NoError(t, r.Validate())
	})

	t.Run("missing url", func(t *testing.T) {
		r := valid()
		r.TargetURL = ""
		assert.ErrorContains(t, r.Validate(), "target_url")
	})

	t.Run("relative url", func(t *testing.T) {
		r := valid()
		r.TargetURL = "/paste-json"
		assert.ErrorContains(t, r.Validate(), "http or https")
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		r := valid()
		r.TargetURL = "ftp://example.test/form"
		assert.ErrorContains(t, r.Validate(), "http or https")
	})

	t.Run("missing input selector", func(t *testing.T) {
		r := valid()
		r.InputSelector = ""
		assert.ErrorContains(t, r.Validate(), "input_selector")
	})

	t.Run("missing trigger selector", func(t *testing.T) {
		r := valid()
		r.TriggerSelector = ""
		assert.ErrorContains(t, r.Validate(), "trigger_selector")
	})

	t.Run("zero element timeout", func(t *testing.T) {
		r := valid()
		r.ElementTimeout = 0
		assert.ErrorContains(t, r.Validate(), "element_timeout")
	})

	t.Run("negative settle delay", func(t *testing.T) {
		r := valid()
		r.SettleDelay = -time.Second
		assert.ErrorContains(t, r.Validate(), "settle_delay")
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("bad logger format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Logger.Format = "xml"
		assert.ErrorContains(t, cfg.Validate(), "logger.format")
	})

	t.Run("zero navigation timeout", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Network.NavigationTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "navigation_timeout")
	})
}
