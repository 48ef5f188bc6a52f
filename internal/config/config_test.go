package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/intentional-app/intentional/internal/deeplink"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvMode, "")

	cfg := DefaultConfig()
	cfg.Environment.Mode = "development"
	cfg.Environment.TunnelHost = "192.168.1.5"
	cfg.Retention.Sessions = 10
	cfg.Timezone = "UTC"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Environment.Mode != "development" {
		t.Errorf("Mode: got %q, want development", loaded.Environment.Mode)
	}
	if loaded.Environment.TunnelHost != "192.168.1.5" {
		t.Errorf("TunnelHost: got %q", loaded.Environment.TunnelHost)
	}
	if loaded.Retention.Sessions != 10 {
		t.Errorf("Retention.Sessions: got %d, want 10", loaded.Retention.Sessions)
	}
	if loaded.Timezone != "UTC" {
		t.Errorf("Timezone: got %q", loaded.Timezone)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Environment.Mode != "production" {
		t.Errorf("default mode: got %q, want production", cfg.Environment.Mode)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("default backend: got %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Retention.Sessions != 50 || cfg.Retention.QuestionHistory != 100 {
		t.Errorf("default retention: got %+v", cfg.Retention)
	}
	if cfg.Questions.RecentDays != 14 {
		t.Errorf("default recent days: got %d, want 14", cfg.Questions.RecentDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvMode, "")
	partial := `version: 1
storage:
  backend: memory
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend: got %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Environment.AppScheme != "intentional" {
		t.Errorf("app scheme should default, got %q", cfg.Environment.AppScheme)
	}
	if cfg.Retention.QuestionHistory != 100 {
		t.Errorf("question history should default, got %d", cfg.Retention.QuestionHistory)
	}
}

func TestEnvOverridesMode(t *testing.T) {
	tmpDir := t.TempDir()
	if err := WriteConfig(tmpDir, DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	t.Setenv(EnvMode, "development")

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	env := cfg.DeepLinkEnvironment()
	if env.Family != deeplink.FamilyDevelopment {
		t.Errorf("family: got %q, want development", env.Family)
	}
	if len(env.TunnelSchemes) != 2 || env.TunnelPort != 8081 {
		t.Errorf("tunnel settings: got %+v", env)
	}
}

func TestProductionEnvironmentHasNoTunnel(t *testing.T) {
	env := DefaultConfig().DeepLinkEnvironment()
	if env.Family != deeplink.FamilyProduction {
		t.Errorf("family: got %q", env.Family)
	}
	if len(env.TunnelSchemes) != 0 {
		t.Errorf("production should not accept tunnel schemes, got %v", env.TunnelSchemes)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":     func(c *Config) { c.Environment.Mode = "staging" },
		"backend":  func(c *Config) { c.Storage.Backend = "postgres" },
		"scheme":   func(c *Config) { c.Environment.AppScheme = "" },
		"timezone": func(c *Config) { c.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvMode, "")
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend: got %q", cfg.Storage.Backend)
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "config.yaml"), []byte("version: [oops"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadOrDefault(bad); err == nil {
		t.Error("malformed config should not fall back to defaults")
	}
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/intentional-test")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dir != "/tmp/intentional-test" {
		t.Errorf("DataDir: got %q", dir)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	st, err := cfg.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer st.Close()
	if _, err := os.Stat(filepath.Join(dir, "intentional.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	cfg.Storage.Backend = "memory"
	mem, err := cfg.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore memory failed: %v", err)
	}
	_ = mem.Close()
}
