package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"subenc/internal/history"
	"subenc/internal/preflight"
)

func TestStatusWriterChecks(t *testing.T) {
	var buf bytes.Buffer
	status := newStatusWriter(&buf)
	status.section("Directories")
	status.check(preflight.Result{Name: "Root directory", Passed: true, Detail: "/subs"})
	status.check(preflight.Result{Name: "State directory", Missing: true, Detail: "does not exist"})
	status.check(preflight.Result{Name: "Log directory", Detail: "not writable"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"== Directories ==",
		"-----------------",
		"  Root directory:    [OK] /subs",
		"  State directory:   [WARN] does not exist",
		"  Log directory:     [ERROR] not writable",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestStatusWriterRun(t *testing.T) {
	var buf bytes.Buffer
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)
	newStatusWriter(&buf).run(&history.Run{
		ID:         "abcdef0123456789",
		Phase:      history.PhaseDetect,
		Root:       "/subs",
		Status:     history.StatusInterrupted,
		StartedAt:  started,
		FinishedAt: &finished,
		Counts:     history.Counts{Files: 4, Failed: 1, Pending: 2},
	})
	out := buf.String()
	for _, want := range []string{
		"== detect run abcdef01 ==",
		"[WARN] interrupted",
		"[INFO] 1.5s",
		"Failed:",
		"[WARN] 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
