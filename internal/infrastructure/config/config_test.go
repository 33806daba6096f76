package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "discord-token")
	t.Setenv("SELLAUTH_API_KEY", "api-key")
	t.Setenv("SELLAUTH_SHOP_ID", "123")
}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"DISCORD_GUILD_ID", "SELLAUTH_BASE_URL", "SELLAUTH_TIMEOUT", "HTTP_ADDR",
		"SERVICE_NAME", "ENV", "LOG_LEVEL", "LOG_FILE",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SAMPLING_RATIO",
	} {
		t.Setenv(env, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads defaults", func(t *testing.T) {
		clearOptional(t)
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "discord-token", cfg.Discord.Token)
		assert.Empty(t, cfg.Discord.GuildID)
		assert.Equal(t, "api-key", cfg.SellAuth.APIKey)
		assert.Equal(t, "123", cfg.SellAuth.ShopID)
		assert.Equal(t, "https://api.sellauth.com/v1", cfg.SellAuth.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.SellAuth.Timeout)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
		assert.Equal(t, "stockbot", cfg.Log.Service)
		assert.Equal(t, "dev", cfg.Log.Env)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Empty(t, cfg.Telemetry.Endpoint)
		assert.False(t, cfg.Telemetry.Insecure)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		clearOptional(t)
		setRequired(t)
		t.Setenv("DISCORD_GUILD_ID", "999")
		t.Setenv("SELLAUTH_BASE_URL", "http://localhost:9000/v1")
		t.Setenv("SELLAUTH_TIMEOUT", "3s")
		t.Setenv("HTTP_ADDR", ":9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
		t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
		t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "999", cfg.Discord.GuildID)
		assert.Equal(t, "http://localhost:9000/v1", cfg.SellAuth.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.SellAuth.Timeout)
		assert.Equal(t, ":9090", cfg.HTTP.Addr)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
		assert.True(t, cfg.Telemetry.Insecure)
		assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
	})

	t.Run("missing secrets fail startup", func(t *testing.T) {
		clearOptional(t)
		t.Setenv("TOKEN", "")
		t.Setenv("SELLAUTH_API_KEY", "")
		t.Setenv("SELLAUTH_SHOP_ID", "")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingToken)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.ErrorIs(t, err, ErrMissingShopID)
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Discord:   DiscordConfig{Token: "t"},
		SellAuth:  SellAuthConfig{APIKey: "k", ShopID: "s", BaseURL: "https://api.sellauth.com/v1", Timeout: time.Second},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Telemetry: TelemetryConfig{SamplingRatio: 1},
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"relative base url": func(c *Config) { c.SellAuth.BaseURL = "/v1" },
		"zero timeout":      func(c *Config) { c.SellAuth.Timeout = 0 },
		"empty addr":        func(c *Config) { c.HTTP.Addr = "" },
		"ratio above one":   func(c *Config) { c.Telemetry.SamplingRatio = 1.5 },
		"missing shop":      func(c *Config) { c.SellAuth.ShopID = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
