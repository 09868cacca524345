package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"TEST_POSTGRES_DSN"`
	} `yaml:"database"`
	Gateways struct {
		Timeout time.Duration `yaml:"timeout" env:"TEST_GATEWAY_TIMEOUT"`
	} `yaml:"gateways"`
	Debug bool `yaml:"debug"`
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("http:\n  port: \"9090\"\ndatabase:\n  dsn: \"postgres://file\"\ngateways:\n  timeout: 5s\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_POSTGRES_DSN", "postgres://env")
	t.Setenv("DEBUG", "true")

	cfg := &testConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Fatalf("file value not applied: %q", cfg.HTTP.Port)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("env must override file, got %q", cfg.Database.DSN)
	}
	if cfg.Gateways.Timeout != 5*time.Second {
		t.Fatalf("duration not parsed from file: %v", cfg.Gateways.Timeout)
	}
	if !cfg.Debug {
		t.Fatalf("bool env not applied")
	}
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TEST_GATEWAY_TIMEOUT", "1m30s")

	cfg := &testConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateways.Timeout != 90*time.Second {
		t.Fatalf("duration env not parsed: %v", cfg.Gateways.Timeout)
	}
}

func TestLoadRejectsNonPointer(t *testing.T) {
	if err := Load(testConfig{}); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
	if err := Load(nil); err == nil {
		t.Fatalf("expected error for nil target")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if err := Load(&testConfig{}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
