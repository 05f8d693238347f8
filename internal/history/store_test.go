package history_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subenc/internal/history"
	"subenc/internal/testsupport"
)

func TestBeginFinishRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run, err := store.Begin(ctx, history.PhaseTranscode, cfg.Paths.Root)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if run.ID == "" || run.Status != history.StatusRunning {
		t.Fatalf("unexpected run %#v", run)
	}

	counts := history.Counts{Files: 3, Succeeded: 1, Skipped: 1, Failed: 1}
	failures := []history.Failure{{Path: "/subs/c.srt", Message: "Unknown encoding: FOO"}}
	if err := store.Finish(ctx, run, history.StatusCompleted, counts, failures); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if run.FinishedAt == nil || run.Status != history.StatusCompleted {
		t.Fatalf("run not updated in place: %#v", run)
	}

	fetched, err := store.Get(ctx, run.ShortID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.ID != run.ID || fetched.Counts != counts || fetched.Phase != history.PhaseTranscode {
		t.Fatalf("unexpected fetched run %#v", fetched)
	}
	if fetched.FinishedAt == nil || fetched.Duration() < 0 {
		t.Fatalf("expected finished timestamp, got %#v", fetched)
	}

	got, err := store.Failures(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failures failed: %v", err)
	}
	if len(got) != 1 || got[0] != failures[0] {
		t.Fatalf("unexpected failures %#v", got)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	var ids []string
	for _, phase := range []history.Phase{history.PhaseDetect, history.PhaseTranscode, history.PhaseTranscode} {
		run, err := store.Begin(ctx, phase, cfg.Paths.Root)
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].FinishedAt != nil {
		t.Fatal("unfinished run should have no finish time")
	}
}

func TestGetUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	if _, err := store.Get(context.Background(), "deadbeef"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), " "); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	err := store.Finish(context.Background(), &history.Run{ID: "missing"}, history.StatusFailed, history.Counts{}, nil)
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	run, err := store.Begin(context.Background(), history.PhaseDetect, cfg.Paths.Root)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	if _, err := reopened.Get(context.Background(), run.ID); err != nil {
		t.Fatalf("run lost after reopen: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRecordsSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestOpenFailsWhenStateDirIsAFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.StateDir = filepath.Join(blocker, "state")

	if _, err := history.Open(cfg); err == nil {
		t.Fatal("expected an error when the state dir cannot be created")
	}
}
