package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subenc/internal/config"
	"subenc/internal/manifest"
	"subenc/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	root       string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SUBENC_ROOT", "")
	t.Setenv("SUBENC_LOG_LEVEL", "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(base, "subenc.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, root: cfg.Paths.Root}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nroot = %q\nstate_dir = %q\n\n[workers]\ncount = %d\n\n[transcode]\natomic_write = %t\n\n"+
			"[report]\nprogress = %q\n\n[history]\nenabled = %t\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.Root,
		cfg.Paths.StateDir,
		cfg.Workers.Count,
		cfg.Transcode.AtomicWrite,
		cfg.Report.Progress,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readManifest(t *testing.T, path string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Read(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	return m
}

func entryFor(t *testing.T, m *manifest.Manifest, path string) manifest.Entry {
	t.Helper()
	for _, entry := range m.Encodings {
		if entry.Path == path {
			return entry
		}
	}
	t.Fatalf("manifest has no entry for %s: %#v", path, m.Encodings)
	return manifest.Entry{}
}

func setLabel(m *manifest.Manifest, path, label string) {
	for i := range m.Encodings {
		if m.Encodings[i].Path == path {
			m.Encodings[i].Encoding = label
		}
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
