package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bot.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Auth      AuthConfig      `mapstructure:"auth"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Inbox     InboxConfig     `mapstructure:"inbox"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Server    ServerConfig    `mapstructure:"server"`
}

// AuthConfig carries the coach's platform identity and the credential TTL.
type AuthConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	// TokenTTL is how long a fetched access token is trusted before the next
	// caller triggers a fresh login. Duration string in config ("55m").
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type PlatformConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BroadcastConfig pins the weekly broadcast instant in a fixed civil timezone.
type BroadcastConfig struct {
	Weekday  string `mapstructure:"weekday"`
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

type InboxConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// TemplatesConfig optionally points at a YAML file overriding the built-in
// message pools.
type TemplatesConfig struct {
	File string `mapstructure:"file"`
}

// ServerConfig controls the optional read-only status server.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BroadcastWeekday resolves the configured weekday name.
func (c BroadcastConfig) BroadcastWeekday() (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(c.Weekday))]
	if !ok {
		return 0, fmt.Errorf("unknown broadcast weekday %q", c.Weekday)
	}
	return day, nil
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override the file, e.g. auth.email -> AUTH_EMAIL,
	// inbox.poll_interval -> INBOX_POLL_INTERVAL.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Keys without a file entry must still be registered for env-only
	// overrides to survive Unmarshal.
	viper.SetDefault("auth.email", "")
	viper.SetDefault("auth.password", "")
	viper.SetDefault("auth.token_ttl", "55m")
	viper.SetDefault("platform.base_url", "https://beta.finalsurge.com/api")
	viper.SetDefault("platform.timeout", "20s")
	viper.SetDefault("broadcast.weekday", "Saturday")
	viper.SetDefault("broadcast.hour", 18)
	viper.SetDefault("broadcast.minute", 0)
	viper.SetDefault("broadcast.timezone", "Europe/Dublin")
	viper.SetDefault("inbox.enabled", true)
	viper.SetDefault("inbox.poll_interval", "2m")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("templates.file", "")
	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.address", ":8080")

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if err = config.validate(); err != nil {
		return
	}
	return config, nil
}

func (c Config) validate() error {
	if c.Auth.Email == "" || c.Auth.Password == "" {
		return errors.New("auth.email and auth.password must be set (AUTH_EMAIL / AUTH_PASSWORD)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if _, err := c.Broadcast.BroadcastWeekday(); err != nil {
		return err
	}
	if c.Broadcast.Hour < 0 || c.Broadcast.Hour > 23 {
		return fmt.Errorf("broadcast.hour out of range: %d", c.Broadcast.Hour)
	}
	if c.Broadcast.Minute < 0 || c.Broadcast.Minute > 59 {
		return fmt.Errorf("broadcast.minute out of range: %d", c.Broadcast.Minute)
	}
	if _, err := time.LoadLocation(c.Broadcast.Timezone); err != nil {
		return fmt.Errorf("broadcast.timezone: %w", err)
	}
	if c.Inbox.Enabled {
		if c.Inbox.PollInterval <= 0 {
			return errors.New("inbox.poll_interval must be positive")
		}
		if c.Gemini.APIKey == "" {
			return errors.New("gemini.api_key must be set when the inbox listener is enabled")
		}
	}
	return nil
}
