//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/clientcard
redis:
  url: localhost:6379
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 15*time.Second {
		t.Errorf("request timeout = %v, want 15s", cfg.Server.RequestTimeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("redis ttl = %v, want 1h", cfg.Redis.TTL)
	}
	if cfg.Scheduler.TierSyncInterval != time.Minute {
		t.Errorf("tier sync interval = %v, want 1m", cfg.Scheduler.TierSyncInterval)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not carried into runtime config")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  request_timeout: 30s
  admin_api_key: secret-key
database:
  url: postgres://db:5432/clientcard
  max_conns: 25
redis:
  url: redis:6379
  ttl: 5m
gateway:
  base_url: https://gateway.example
  webhook_secret: whsec
scheduler:
  reconcile_batch_size: 50
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("max conns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Errorf("redis ttl = %v, want 5m", cfg.Redis.TTL)
	}
	if cfg.Gateway.WebhookSecret != "whsec" {
		t.Errorf("webhook secret = %q", cfg.Gateway.WebhookSecret)
	}
	if cfg.Scheduler.ReconcileBatchSize != 50 {
		t.Errorf("batch size = %d, want 50", cfg.Scheduler.ReconcileBatchSize)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		path := writeConfig(t, "redis:\n  url: localhost:6379\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing database.url")
		}
	})
	t.Run("missing redis url", func(t *testing.T) {
		path := writeConfig(t, "database:\n  url: postgres://x\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing redis.url")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "{{not yaml")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected parse error")
		}
	})
}
