// Package config provides read-through access to the core's tunables
// (max_retries, backoff_base, worker_count, stale_lock_seconds,
// poll_interval_ms), backed by a JSON file with built-in defaults.
//
// Config does not participate in job processing; it is the read-mostly
// collaborator the CLI (out of core scope) uses to persist operator
// overrides, and that Queue reads through to size its Pool and Workers.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	keyMaxRetries       = "max_retries"
	keyBackoffBase      = "backoff_base"
	keyWorkerCount      = "worker_count"
	keyStaleLockSeconds = "stale_lock_seconds"
	keyPollIntervalMs   = "poll_interval_ms"
)

// Config is a read-through, write-back key/value store for the core's
// configuration, layered over a JSON file on disk.
type Config struct {
	v    *viper.Viper
	path string
}

// defaults mirrors the Python source's Config.defaults.
func defaults() map[string]any {
	return map[string]any{
		keyMaxRetries:       3,
		keyBackoffBase:      2,
		keyWorkerCount:      1,
		keyStaleLockSeconds: 300,
		keyPollIntervalMs:   1000,
	}
}

// New loads configuration from path (JSON), falling back to defaults for
// anything missing. If path does not exist, it is created with the
// defaults, mirroring the Python source's Config._save-on-first-use
// behavior.
func New(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		c := &Config{v: v, path: path}
		if err := c.persist(); err != nil {
			return nil, err
		}
		return c, nil
	}
	return &Config{v: v, path: path}, nil
}

func (c *Config) persist() error {
	return c.v.WriteConfigAs(c.path)
}

// Get returns the raw value for key, falling back to the built-in default
// when key has never been set.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// Set stores value for key and persists the configuration file.
func (c *Config) Set(key string, value any) error {
	c.v.Set(key, value)
	return c.persist()
}

// All returns every configured key/value pair.
func (c *Config) All() map[string]any {
	return c.v.AllSettings()
}

// MaxRetries returns the default job attempt budget applied when a job is
// enqueued without an explicit max_retries.
func (c *Config) MaxRetries() uint32 {
	return uint32(c.v.GetInt(keyMaxRetries))
}

// BackoffBase returns the exponential backoff base, in seconds.
func (c *Config) BackoffBase() float64 {
	return c.v.GetFloat64(keyBackoffBase)
}

// WorkerCount returns the default pool size.
func (c *Config) WorkerCount() int {
	return c.v.GetInt(keyWorkerCount)
}

// StaleLockSeconds returns the reclamation threshold for orphaned locks.
func (c *Config) StaleLockSeconds() time.Duration {
	return time.Duration(c.v.GetInt(keyStaleLockSeconds)) * time.Second
}

// PollInterval returns the idle wait between claims.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.v.GetInt(keyPollIntervalMs)) * time.Millisecond
}
