package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a temp dir so a developer's loom.toml can't leak in.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Recording.ApplicationID != "loom-app" {
		t.Errorf("ApplicationID = %q, want %q", cfg.Recording.ApplicationID, "loom-app")
	}
	if cfg.Recording.FlushQueueSize != 64 {
		t.Errorf("FlushQueueSize = %d, want 64", cfg.Recording.FlushQueueSize)
	}
	if cfg.Sink.Path != "./recording.loom" {
		t.Errorf("Sink.Path = %q, want %q", cfg.Sink.Path, "./recording.loom")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOOM_RECORDING_APPLICATION_ID", "my-app")
	t.Setenv("LOOM_SINK_PATH", filepath.Join("out", "rec.loom"))
	t.Setenv("LOOM_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Recording.ApplicationID != "my-app" {
		t.Errorf("ApplicationID = %q, want %q", cfg.Recording.ApplicationID, "my-app")
	}
	if cfg.Sink.Path != filepath.Join("out", "rec.loom") {
		t.Errorf("Sink.Path = %q", cfg.Sink.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero queue", func(c *Config) { c.Recording.FlushQueueSize = 0 }, true},
		{"empty sink path", func(c *Config) { c.Sink.Path = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Recording: RecordingConfig{ApplicationID: "app", FlushQueueSize: 8},
				Sink:      SinkConfig{Path: "rec.loom"},
				Log:       LogConfig{Level: "info", Format: "console"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
