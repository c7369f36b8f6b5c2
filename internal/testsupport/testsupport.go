// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"soundminer/internal/config"
	"soundminer/internal/queue"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAgreeThreshold overrides the consensus threshold on the test config.
func WithAgreeThreshold(threshold int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Consensus.AgreeThreshold = threshold
	}
}

// WithDurationWindow overrides the master track duration window.
func WithDurationWindow(minSeconds, maxSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Master.MinSeconds = minSeconds
		cfg.Master.MaxSeconds = maxSeconds
	}
}

// MustOpenStore opens a queue store for the config and closes it with the test.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open queue store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close queue store: %v", err)
		}
	})
	return store
}

// WriteFile fills the target path with the given contents, creating parents.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
