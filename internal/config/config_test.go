package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigFromDefaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Tag.MaxAttempts != 50 {
		t.Errorf("tag.max_attempts = %d, want 50", cfg.Tag.MaxAttempts)
	}
	if cfg.Identity.Provider != "local" {
		t.Errorf("identity.provider = %q, want local", cfg.Identity.Provider)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("conn_max_lifetime = %v, want 1h", cfg.Database.ConnMaxLifetime)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors_origins = %v, want two localhost origins", cfg.Server.CORSOrigins)
	}
}

func TestLoadConfigFromEnvOverride(t *testing.T) {
	dir := writeConfig(t, "database:\n  dsn: postgres://yaml\nidentity:\n  provider: firebase\n  api_key: from-yaml\n")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("FIREBASE_API_KEY", "from-env")

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Errorf("dsn = %q, want env value", cfg.Database.DSN)
	}
	if cfg.Identity.APIKey != "from-env" {
		t.Errorf("api_key = %q, want env value", cfg.Identity.APIKey)
	}
	if cfg.Identity.Provider != "firebase" {
		t.Errorf("provider = %q, want firebase", cfg.Identity.Provider)
	}
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	if _, err := LoadConfigFrom(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config.yaml")
	}
}
