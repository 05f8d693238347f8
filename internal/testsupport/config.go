// Package testsupport builds configs and subtitle fixtures for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subenc/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// <tmp>/root (created), <tmp>/state, progress output disabled, and a small
// worker pool.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = filepath.Join(base, "root")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Report.Progress = config.ProgressNever
	cfgVal.Workers.Count = 4

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.Root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	return builder.cfg
}

// WithoutHistory disables the SQLite run history.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithInPlaceWrites turns off atomic temp-file replacement.
func WithInPlaceWrites() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.AtomicWrite = false
	}
}
