package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	LLM         LLMConfig         `mapstructure:"llm"         validate:"required"`
	NoteSink    NoteSinkConfig    `mapstructure:"notesink"    validate:"required"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator" validate:"required"`
	Review      ReviewConfig      `mapstructure:"review"`
	Settings    SettingsConfig    `mapstructure:"settings"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains the provider endpoints and the transport policy shared
// by every provider client. Credentials are not part of it: the API key and
// model come from the user's settings on each invocation.
type LLMConfig struct {
	GoogleBaseURL string `mapstructure:"google_base_url" validate:"omitempty,url"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"required,url"`
	// RequestTimeout bounds a single provider call. There is no retry.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`
}

// NoteSinkConfig describes the local note-adding service.
type NoteSinkConfig struct {
	URL       string        `mapstructure:"url"        validate:"required,url"`
	ModelName string        `mapstructure:"model_name" validate:"required"`
	Tags      []string      `mapstructure:"tags"`
	Timeout   time.Duration `mapstructure:"timeout"    validate:"required,gt=0"`
}

// CoordinatorConfig controls invocation scheduling and the delivery handshake.
type CoordinatorConfig struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" validate:"required,gt=0"`
	Workers          int           `mapstructure:"workers"           validate:"required,gt=0"`
	QueueSize        int           `mapstructure:"queue_size"        validate:"required,gt=0"`
}

// ReviewConfig controls the in-page review panel.
type ReviewConfig struct {
	// ConfirmDelay is how long a committed card shows its confirmation
	// before it leaves the list.
	ConfirmDelay time.Duration `mapstructure:"confirm_delay" validate:"gte=0"`
}

// SettingsConfig locates the user's provider settings file.
type SettingsConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}
