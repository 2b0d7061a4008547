package daemon

import (
	"testing"

	"Nemo/internal/config"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/keys"
)

func TestKeymapFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.AssistantKey = "Alt_R"
	km := Keymap(cfg)
	if km.TTS != keys.RightShift || km.Assistant != keys.RightAlt || km.Rewind != keys.Left || km.Forward != keys.Right {
		t.Fatalf("keymap = %+v", km)
	}
	if err := hotkey.Validate(hotkey.DefaultBindings(km)); err != nil {
		t.Fatal(err)
	}
}

func TestClassifierOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.ComboRelease = " Either "
	cfg.ModifierHoldStart = "RELEASE"
	opts := ClassifierOptions(cfg)
	if opts.ComboRelease != hotkey.ReleaseEither || opts.ModifierHold != hotkey.HoldStartOnRelease {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestUnknownInjectorAndSource(t *testing.T) {
	cfg := config.Defaults()
	cfg.Injector = "xdotool"
	if _, err := newInjector(cfg, nil); err == nil {
		t.Fatal("expected injector error")
	}
	cfg.KeySource = "x11"
	if _, err := NewSource(cfg, nil); err == nil {
		t.Fatal("expected source error")
	}
}

func TestEchoFilterOnlyForHook(t *testing.T) {
	cases := []struct {
		source, injector string
		want             bool
	}{
		{"hook", "robotgo", true},
		{"Hook", "keybd", true},
		{"hook", "dry-run", false},
		{"evdev", "robotgo", false},
	}
	for _, c := range cases {
		cfg := config.Defaults()
		cfg.KeySource, cfg.Injector = c.source, c.injector
		if got := EchoFilter(cfg) != nil; got != c.want {
			t.Errorf("EchoFilter(%s, %s) = %v, want %v", c.source, c.injector, got, c.want)
		}
	}
}
