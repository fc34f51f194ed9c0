package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Refine.MaxRatio != 0.2 {
		t.Errorf("MaxRatio = %v, want 0.2", cfg.Refine.MaxRatio)
	}
	if cfg.Refine.DefaultRadiusKm != 10 || cfg.Refine.MaxRadiusKm != 500 {
		t.Errorf("radius defaults = %v/%v", cfg.Refine.DefaultRadiusKm, cfg.Refine.MaxRadiusKm)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("MaxEntries = %d, want 10", cfg.History.MaxEntries)
	}
	if cfg.History.TTL() != 30*24*time.Hour {
		t.Errorf("TTL() = %v, want 720h", cfg.History.TTL())
	}
	if cfg.History.KeyPrefix != "refinery:" {
		t.Errorf("KeyPrefix = %q", cfg.History.KeyPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"redis without addrs", func(c *Config) { c.Database.Driver = DriverRedis }, "database.addrs"},
		{"ratio above one", func(c *Config) { c.Refine.MaxRatio = 1.5 }, "refine.max_ratio"},
		{"negative ratio", func(c *Config) { c.Refine.MaxRatio = -0.1 }, "refine.max_ratio"},
		{"default above max radius", func(c *Config) { c.Refine.DefaultRadiusKm = 900 }, "refine.default_radius_km"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RedisWithAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = DriverRedis
	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("REFINERY_TEST_PORT", "9090")
	t.Setenv("REFINERY_TEST_KEY", "")

	path := filepath.Join(t.TempDir(), "test.yaml")
	body := `
http:
  port: ${REFINERY_TEST_PORT}
database:
  driver: ${REFINERY_TEST_DRIVER:-memory}
refine:
  max_ratio: 0.25
history:
  max_entries: 5
auth:
  api_keys: ["${REFINERY_TEST_KEY:-secret}"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Refine.MaxRatio != 0.25 {
		t.Errorf("MaxRatio = %v, want 0.25", cfg.Refine.MaxRatio)
	}
	if cfg.History.MaxEntries != 5 {
		t.Errorf("MaxEntries = %d, want 5", cfg.History.MaxEntries)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "secret" {
		t.Errorf("APIKeys = %v, want [secret]", cfg.Auth.APIKeys)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected a port in config/local.yaml")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("GetEnv() = %q, want local", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("GetEnv() = %q, want prod", GetEnv())
	}
}
