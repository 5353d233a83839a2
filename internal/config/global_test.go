package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/hairball/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config.
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "hairball", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.Theme != "" || cfg.MaxNodes != 0 {
		t.Errorf("LoadGlobalConfig() = %+v, want empty config", cfg)
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	configHome := t.TempDir()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	content := "theme: light\nrenderer: raster\nmax_nodes: 750\nframe_rate: 30\n"
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
	if cfg.Renderer != "raster" {
		t.Errorf("Renderer = %q, want raster", cfg.Renderer)
	}
	if cfg.MaxNodes != 750 {
		t.Errorf("MaxNodes = %d, want 750", cfg.MaxNodes)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %d, want 30", cfg.FrameRate)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	configHome := t.TempDir()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte("theme: [broken"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() error = nil for invalid YAML, want error")
	}
}

func TestLoadGlobalConfig_Caches(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	configHome := t.TempDir()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, GlobalConfigFile)
	if err := os.WriteFile(path, []byte("theme: light\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// A later rewrite is invisible until the cache is reset.
	if err := os.WriteFile(path, []byte("theme: dark\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}
	second, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if second != first {
		t.Error("LoadGlobalConfig() returned a new instance, want cached")
	}

	ResetGlobalConfigCache()
	third, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if third.Theme != "dark" {
		t.Errorf("Theme after reset = %q, want dark", third.Theme)
	}
}

func TestGlobalAsConfig(t *testing.T) {
	g := GlobalConfig{MaxNodes: 400, Theme: "light"}
	c := g.asConfig()
	if c.DefaultMaxNodes != 400 || c.Theme != "light" {
		t.Errorf("asConfig() = %+v, want max nodes 400 theme light", c)
	}
	if c.Renderer != "" || c.FrameRate != 0 {
		t.Errorf("asConfig() = %+v, want unset renderer and frame rate", c)
	}
}
