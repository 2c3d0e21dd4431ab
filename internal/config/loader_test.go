package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()

	if got.Theme != "catppuccin-mocha" {
		t.Fatalf("Theme = %q, want catppuccin-mocha", got.Theme)
	}
	if got.Capacity != 50 {
		t.Fatalf("Capacity = %d, want 50", got.Capacity)
	}
	if got.Mode != "silent" {
		t.Fatalf("Mode = %q, want silent", got.Mode)
	}
	if !got.ShowTiming {
		t.Fatal("ShowTiming = false, want true")
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := Load()
	want := DefaultConfig()

	if got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "reqlens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}

	configYAML := "theme: nord\ncapacity: 200\nmode: log\nlog_level: debug\nlog_format: json\nshow_timing: false\nwrap_bodies: true\n"
	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	got := Load()

	if got.Theme != "nord" {
		t.Fatalf("Theme = %q, want nord", got.Theme)
	}
	if got.Capacity != 200 {
		t.Fatalf("Capacity = %d, want 200", got.Capacity)
	}
	if got.Mode != "log" {
		t.Fatalf("Mode = %q, want log", got.Mode)
	}
	if got.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", got.LogLevel)
	}
	if got.LogFormat != "json" {
		t.Fatalf("LogFormat = %q, want json", got.LogFormat)
	}
	if got.ShowTiming {
		t.Fatal("ShowTiming = true, want false")
	}
	if !got.WrapBodies {
		t.Fatal("WrapBodies = false, want true")
	}
}

func TestLoadMergesPartialConfigWithDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "reqlens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte("theme: gruvbox\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	got := Load()
	want := DefaultConfig()
	want.Theme = "gruvbox"

	if got != want {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadInvalidYAMLKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "reqlens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte("theme: [\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	got := Load()
	want := DefaultConfig()

	if got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}
