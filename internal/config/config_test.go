package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_BACKEND", "ADVICE_PROVIDER", "LOGIN_DELAY", "CACHE_TTL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.StorageBackend != StorageMemory {
		t.Errorf("expected memory backend, got %s", cfg.StorageBackend)
	}
	if cfg.AdviceProvider != AdviceNone {
		t.Errorf("expected no advice provider, got %s", cfg.AdviceProvider)
	}
	if cfg.LoginDelay != 0 {
		t.Errorf("expected no login delay, got %s", cfg.LoginDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("expected 9090, got %d", cfg.Port)
	}
	if cfg.StorageBackend != StorageSQLite {
		t.Errorf("expected lower-cased sqlite, got %s", cfg.StorageBackend)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.CacheTTL)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"storage", func(c *Config) { c.StorageBackend = "mongo" }},
		{"provider", func(c *Config) { c.AdviceProvider = "bard" }},
		{"openai without key", func(c *Config) { c.AdviceProvider = AdviceOpenAI; c.OpenAIAPIKey = "" }},
		{"supabase without url", func(c *Config) { c.StorageBackend = StorageSupabase; c.SupabaseURL = "" }},
		{"port", func(c *Config) { c.Port = 0 }},
		{"secret", func(c *Config) { c.JWTSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			cfg.StorageBackend = StorageMemory
			cfg.AdviceProvider = AdviceNone
			cfg.Port = 8080
			cfg.JWTSecret = "s"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comentário\nCONTROLETOK_TEST_A=from-file\nCONTROLETOK_TEST_B=\"quoted\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONTROLETOK_TEST_A", "from-env")
	os.Unsetenv("CONTROLETOK_TEST_B")
	t.Cleanup(func() { os.Unsetenv("CONTROLETOK_TEST_B") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("expected missing file to be skipped, got %v", err)
	}
	if got := os.Getenv("CONTROLETOK_TEST_A"); got != "from-env" {
		t.Errorf("env should win over file, got %q", got)
	}
	if got := os.Getenv("CONTROLETOK_TEST_B"); got != "quoted" {
		t.Errorf("expected unquoted value, got %q", got)
	}
}
