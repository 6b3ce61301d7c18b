package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/config"
)

func TestNewCreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c, err := config.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxRetries() != 3 {
		t.Fatalf("MaxRetries = %d, want 3", c.MaxRetries())
	}
	if c.WorkerCount() != 1 {
		t.Fatalf("WorkerCount = %d, want 1", c.WorkerCount())
	}
	if c.StaleLockSeconds() != 300*time.Second {
		t.Fatalf("StaleLockSeconds = %v, want 300s", c.StaleLockSeconds())
	}
	if c.PollInterval() != time.Second {
		t.Fatalf("PollInterval = %v, want 1s", c.PollInterval())
	}

	if _, err := config.New(path); err != nil {
		t.Fatalf("reloading a freshly written config failed: %v", err)
	}
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c, err := config.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("worker_count", 4); err != nil {
		t.Fatal(err)
	}

	reloaded, err := config.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.WorkerCount() != 4 {
		t.Fatalf("WorkerCount after reload = %d, want 4", reloaded.WorkerCount())
	}
}

func TestAllReturnsEveryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c, err := config.New(path)
	if err != nil {
		t.Fatal(err)
	}
	all := c.All()
	for _, key := range []string{"max_retries", "backoff_base", "worker_count", "stale_lock_seconds", "poll_interval_ms"} {
		if _, ok := all[key]; !ok {
			t.Fatalf("All() missing key %q", key)
		}
	}
}
