package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingToken  = errors.New("config: TOKEN is required")
	ErrMissingAPIKey = errors.New("config: SELLAUTH_API_KEY is required")
	ErrMissingShopID = errors.New("config: SELLAUTH_SHOP_ID is required")
)

// Config holds all bot configuration. It is loaded once at startup and passed by value.
type Config struct {
	Discord   DiscordConfig
	SellAuth  SellAuthConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

type DiscordConfig struct {
	Token string
	// GuildID limits command registration to one guild; empty registers globally.
	GuildID string
}

type SellAuthConfig struct {
	APIKey  string
	ShopID  string
	BaseURL string
	Timeout time.Duration
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	Service string
	Env     string
	Level   string
	File    string
}

type TelemetryConfig struct {
	Endpoint      string
	Insecure      bool
	SamplingRatio float64
}

// key -> environment variable
var bindings = map[string]string{
	"discord.token":      "TOKEN",
	"discord.guild_id":   "DISCORD_GUILD_ID",
	"sellauth.api_key":   "SELLAUTH_API_KEY",
	"sellauth.shop_id":   "SELLAUTH_SHOP_ID",
	"sellauth.base_url":  "SELLAUTH_BASE_URL",
	"sellauth.timeout":   "SELLAUTH_TIMEOUT",
	"http.addr":          "HTTP_ADDR",
	"log.service":        "SERVICE_NAME",
	"log.env":            "ENV",
	"log.level":          "LOG_LEVEL",
	"log.file":           "LOG_FILE",
	"telemetry.endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	"telemetry.insecure": "OTEL_EXPORTER_OTLP_INSECURE",
	"telemetry.sampling": "OTEL_SAMPLING_RATIO",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sellauth.base_url", "https://api.sellauth.com/v1")
	v.SetDefault("sellauth.timeout", 15*time.Second)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.service", "stockbot")
	v.SetDefault("log.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sampling", 1.0)
}

// Load reads configuration from the environment. Call godotenv first to pick up a .env file.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	cfg := Config{
		Discord: DiscordConfig{
			Token:   v.GetString("discord.token"),
			GuildID: v.GetString("discord.guild_id"),
		},
		SellAuth: SellAuthConfig{
			APIKey:  v.GetString("sellauth.api_key"),
			ShopID:  v.GetString("sellauth.shop_id"),
			BaseURL: v.GetString("sellauth.base_url"),
			Timeout: v.GetDuration("sellauth.timeout"),
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("http.addr"),
		},
		Log: LogConfig{
			Service: v.GetString("log.service"),
			Env:     v.GetString("log.env"),
			Level:   v.GetString("log.level"),
			File:    v.GetString("log.file"),
		},
		Telemetry: TelemetryConfig{
			Endpoint:      v.GetString("telemetry.endpoint"),
			Insecure:      v.GetBool("telemetry.insecure"),
			SamplingRatio: v.GetFloat64("telemetry.sampling"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.SellAuth.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.SellAuth.ShopID == "" {
		errs = append(errs, ErrMissingShopID)
	}
	if u, err := url.Parse(c.SellAuth.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: SELLAUTH_BASE_URL %q is not an absolute URL", c.SellAuth.BaseURL))
	}
	if c.SellAuth.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: SELLAUTH_TIMEOUT must be positive, got %s", c.SellAuth.Timeout))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("config: HTTP_ADDR must not be empty"))
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		errs = append(errs, fmt.Errorf("config: OTEL_SAMPLING_RATIO must be within [0,1], got %v", c.Telemetry.SamplingRatio))
	}
	return errors.Join(errs...)
}
