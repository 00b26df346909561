package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the Loom SDK.
type Config struct {
	Recording RecordingConfig
	Sink      SinkConfig
	Log       LogConfig
}

// RecordingConfig controls the recording stream.
type RecordingConfig struct {
	ApplicationID  string
	FlushQueueSize int // Queued write ops before Log blocks (backpressure)
}

// SinkConfig controls where recordings are written.
type SinkConfig struct {
	Path string // Recording file path, e.g. "./out.loom"
}

// LogConfig controls SDK diagnostics logging.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment and an optional loom.toml
// config file.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("loom")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.loom/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{
		Recording: RecordingConfig{
			ApplicationID:  v.GetString("recording.application_id"),
			FlushQueueSize: v.GetInt("recording.flush_queue_size"),
		},
		Sink: SinkConfig{
			Path: v.GetString("sink.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Recording.FlushQueueSize < 1 {
		return fmt.Errorf("recording.flush_queue_size must be at least 1, got %d", c.Recording.FlushQueueSize)
	}
	if c.Sink.Path == "" {
		return fmt.Errorf("sink.path must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recording.application_id", "loom-app")
	v.SetDefault("recording.flush_queue_size", 64)

	v.SetDefault("sink.path", "./recording.loom")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
