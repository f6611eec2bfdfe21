package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Dir != "uploaded-files" {
		t.Errorf("expected default storage dir, got %q", cfg.Storage.Dir)
	}
	if cfg.Retention.Window != 7*24*time.Hour {
		t.Errorf("expected 7 day retention, got %s", cfg.Retention.Window)
	}
	if cfg.Transform.FlagColumn != "flag" {
		t.Errorf("expected flag column, got %q", cfg.Transform.FlagColumn)
	}
	if !cfg.Worker.RetainFailed {
		t.Error("expected failed jobs to be retained by default")
	}
	if cfg.Registry.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Registry.Backend)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DIR", "/var/lib/csvflag")
	t.Setenv("WORKER_POOL_SIZE", "8")
	t.Setenv("RETENTION_WINDOW", "48h")
	t.Setenv("JOB_RETAIN_FAILED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Dir != "/var/lib/csvflag" {
		t.Errorf("expected overridden storage dir, got %q", cfg.Storage.Dir)
	}
	if cfg.Worker.PoolSize != 8 {
		t.Errorf("expected pool size 8, got %d", cfg.Worker.PoolSize)
	}
	if cfg.Retention.Window != 48*time.Hour {
		t.Errorf("expected 48h retention, got %s", cfg.Retention.Window)
	}
	if cfg.Worker.RetainFailed {
		t.Error("expected JOB_RETAIN_FAILED=false to be honoured")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REGISTRY_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown registry backend")
	}
}

func TestLoad_RejectsZeroPool(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORKER_POOL_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for empty worker pool")
	}
}
