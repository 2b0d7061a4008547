package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Rewind.MaxHistory != 5000 {
		t.Errorf("MaxHistory = %d, want 5000", cfg.Rewind.MaxHistory)
	}
	if cfg.TapThreshold != 200*time.Millisecond {
		t.Errorf("TapThreshold = %s, want 200ms", cfg.TapThreshold)
	}
	if cfg.StatusServer.Enabled {
		t.Error("status server must be disabled by default")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("REWIND_MAX_HISTORY", "42")
	t.Setenv("REWIND_TICK", "15ms")
	t.Setenv("COMBO_RELEASE", "either")
	t.Setenv("KEY_SOURCE", "evdev")
	t.Setenv("STATUS_SERVER_ENABLED", "true")

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Rewind.MaxHistory != 42 || cfg.Rewind.Tick != 15*time.Millisecond {
		t.Errorf("rewind = %+v", cfg.Rewind)
	}
	if cfg.ComboRelease != "either" || cfg.KeySource != "evdev" || !cfg.StatusServer.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
	// не заданные ENV сохраняют дефолты
	if cfg.TTSKey != "right shift" {
		t.Errorf("TTSKey = %q", cfg.TTSKey)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	cfg := Defaults()
	fs := flag.NewFlagSet("nemo", flag.ContinueOnError)
	BindFlags(fs, cfg)
	if err := fs.Parse([]string{"-injector", "dry-run", "-rewind-max-history", "3", "-tap-threshold", "150ms"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Injector != "dry-run" || cfg.Rewind.MaxHistory != 3 || cfg.TapThreshold != 150*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad source", func(c *Config) { c.KeySource = "x11" }},
		{"bad injector", func(c *Config) { c.Injector = "xdotool" }},
		{"bad combo release", func(c *Config) { c.ComboRelease = "never" }},
		{"bad hold start", func(c *Config) { c.ModifierHoldStart = "later" }},
		{"bad tts", func(c *Config) { c.TTSService = "yandex" }},
		{"empty key", func(c *Config) { c.RewindKey = " " }},
		{"zero history", func(c *Config) { c.Rewind.MaxHistory = 0 }},
		{"zero tick", func(c *Config) { c.Rewind.Tick = 0 }},
		{"negative tap", func(c *Config) { c.TapThreshold = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCheckGoogleCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	cfg := Defaults()
	cfg.GoogleTTS.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")
	if err := cfg.CheckGoogleCredentials(); err == nil {
		t.Fatal("expected error for missing key file")
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.GoogleTTS.CredentialsPath = path
	if err := cfg.CheckGoogleCredentials(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.TTSService = "gemini"
	cfg.GoogleTTS.CredentialsPath = ""
	if err := cfg.CheckGoogleCredentials(); err != nil {
		t.Fatalf("gemini must not require google key: %v", err)
	}
}
