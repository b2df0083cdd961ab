package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FLASHCARD_SERVER_PORT or FLASHCARD_NOTESINK_URL.
const EnvPrefix = "FLASHCARD"

// setDefaults registers every key so that environment overrides are picked
// up by Unmarshal even when no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.google_base_url", "")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.request_timeout", "120s")

	v.SetDefault("notesink.url", "http://127.0.0.1:8765")
	v.SetDefault("notesink.model_name", "Basic")
	v.SetDefault("notesink.tags", []string{"web-generated"})
	v.SetDefault("notesink.timeout", "10s")

	v.SetDefault("coordinator.handshake_timeout", "5s")
	v.SetDefault("coordinator.workers", 4)
	v.SetDefault("coordinator.queue_size", 32)

	v.SetDefault("review.confirm_delay", "2s")

	v.SetDefault("settings.path", "flashcard-settings.yaml")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
