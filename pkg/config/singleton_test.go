package config

import (
	"errors"
	"testing"
)

func TestReloadConfig(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(nil)

	if GetConfig() != nil {
		t.Fatal("expected nil config before loading")
	}

	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:9999\"\n")
	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if GetConfig() != cfg {
		t.Error("loaded config was not installed")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:9999", cfg.Server.ListenAddress)
	}
}

func TestReloadConfig_KeepsPreviousOnError(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(NewDefaultConfig())

	bad := writeConfig(t, "render:\n  default_mode: \"bogus\"\n")
	_, err := ReloadConfig(bad)
	if err == nil {
		t.Fatal("expected reload of invalid configuration to fail")
	}
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected a ValidationError in the chain, got %v", err)
	}
	if GetConfig().Render.DefaultMode != DefaultRenderMode {
		t.Error("failed reload replaced the configuration")
	}

	good := writeConfig(t, "render:\n  default_mode: \"tree_diagram\"\n")
	if _, err := ReloadConfig(good); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if GetConfig().Render.DefaultMode != "tree_diagram" {
		t.Errorf("expected reloaded mode tree_diagram, got %q", GetConfig().Render.DefaultMode)
	}
}
