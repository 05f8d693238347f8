package prune

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"subenc/internal/testsupport"
)

var subtitleBody = []byte("1\n00:00:01,000 --> 00:00:02,000\nHello there\n")

func planFor(t *testing.T, root string, opts Options) map[string]Reason {
	t.Helper()
	removals, skipped, err := Plan(context.Background(), root, opts)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("Plan: %v, skipped %v", err, skipped)
	}
	got := make(map[string]Reason, len(removals))
	for _, r := range removals {
		rel, _ := filepath.Rel(root, r.Path)
		got[rel] = r.Reason
	}
	return got
}

func TestPlanSelectsClutter(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.srt"), subtitleBody)
	testsupport.WriteFile(t, filepath.Join(root, ".DS_Store"), subtitleBody)
	testsupport.WriteFile(t, filepath.Join(root, "tiny.srt"), []byte("1\n"))
	testsupport.WriteFile(t, filepath.Join(root, "readme.txt"), subtitleBody)
	testsupport.WriteFile(t, filepath.Join(root, "hollow", "deeper", "x.srt"), nil)
	testsupport.WriteFile(t, filepath.Join(root, ".subenc.lock"), nil)
	if err := os.MkdirAll(filepath.Join(root, "blank"), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := Options{Extensions: []string{"srt"}, MaxTinySize: DefaultMaxTinySize, Keep: []string{".subenc.lock"}}
	got := planFor(t, root, opts)
	want := []struct {
		rel    string
		reason Reason
	}{
		{".DS_Store", ReasonJunk},
		{"tiny.srt", ReasonTiny},
		{filepath.Join("hollow", "deeper", "x.srt"), ReasonTiny},
		{filepath.Join("hollow", "deeper"), ReasonEmptyDir},
		{"hollow", ReasonEmptyDir},
		{"blank", ReasonEmptyDir},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected plan %v", got)
	}
	for _, w := range want {
		if got[w.rel] != w.reason {
			t.Fatalf("%s: got %q want %q (plan %v)", w.rel, got[w.rel], w.reason, got)
		}
	}

	opts.Strays = true
	if got := planFor(t, root, opts); got["readme.txt"] != ReasonStray {
		t.Fatalf("expected readme.txt as a stray, got %v", got)
	}
}

func TestPlanOrdersDirectoriesDeepestFirst(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755); err != nil {
		t.Fatal(err)
	}
	removals, _, err := Plan(context.Background(), root, Options{MaxTinySize: DefaultMaxTinySize})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "a", "b", "c"), filepath.Join(root, "a", "b"), filepath.Join(root, "a")}
	if len(removals) != len(want) {
		t.Fatalf("unexpected removals %#v", removals)
	}
	for i, r := range removals {
		if r.Path != want[i] || !r.Dir {
			t.Fatalf("removal %d: got %#v want %s", i, r, want[i])
		}
	}
}

func TestPlanLeavesSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.srt")
	testsupport.WriteFile(t, target, subtitleBody)
	if err := os.Symlink(target, filepath.Join(root, "link.srt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if got := planFor(t, root, Options{MaxTinySize: DefaultMaxTinySize, Strays: true}); len(got) != 0 {
		t.Fatalf("expected nothing to remove, got %v", got)
	}
}

func TestApplyRemovesPlannedPaths(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "keep.srt"), subtitleBody)
	testsupport.WriteFile(t, filepath.Join(root, "empty", ".DS_Store"), []byte("meta"))

	removals, _, err := Plan(context.Background(), root, Options{MaxTinySize: DefaultMaxTinySize})
	if err != nil {
		t.Fatal(err)
	}
	results, err := Apply(context.Background(), removals, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("remove %s: %v", r.Path, r.Err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "empty")); !os.IsNotExist(err) {
		t.Fatal("empty directory survived")
	}
	if _, err := os.Stat(filepath.Join(root, "keep.srt")); err != nil {
		t.Fatalf("subtitle removed: %v", err)
	}
}
