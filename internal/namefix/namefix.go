// Package namefix renames files whose names are GBK text mis-decoded as
// code page 437.
package namefix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"subenc/internal/charset"
	"subenc/internal/discovery"
	"subenc/internal/fileutil"
	"subenc/internal/logging"
	"subenc/internal/manifest"
)

// Change is one planned rename inside a single directory.
type Change struct {
	From string
	To   string
}

// Status is what happened to a Change.
type Status string

const (
	StatusRenamed      Status = "renamed"
	StatusWouldRename  Status = "would_rename"
	StatusTargetExists Status = "target_exists"
	StatusFailed       Status = "failed"
)

// Result is the outcome of one Change.
type Result struct {
	Change
	Status Status
	Err    error
}

// Plan walks root and proposes a rename for every file whose base name
// RepairName can fix. Directory names are left alone.
func Plan(ctx context.Context, root string) ([]Change, []discovery.Skipped, error) {
	var changes []Change
	skipped, err := discovery.Walk(ctx, root, func(path string, d fs.DirEntry) error {
		fixed, ok := charset.RepairName(d.Name())
		if ok {
			changes = append(changes, Change{From: path, To: filepath.Join(filepath.Dir(path), fixed)})
		}
		return nil
	})
	return changes, skipped, err
}

// Fixer applies planned renames.
type Fixer struct {
	DryRun bool
	logger *slog.Logger
	// rename and exists default to the os package.
	rename func(from, to string) error
	exists func(path string) bool
}

// NewFixer returns a Fixer that renames on disk unless dryRun is set.
func NewFixer(dryRun bool, logger *slog.Logger) *Fixer {
	return &Fixer{
		DryRun: dryRun,
		logger: logging.NewComponentLogger(logger, "namefix"),
		rename: os.Rename,
		exists: func(path string) bool {
			_, err := os.Lstat(path)
			return !errors.Is(err, fs.ErrNotExist)
		},
	}
}

// Apply runs the changes in order. A target that already exists on disk, or
// that an earlier change claimed, is never overwritten. A cancelled ctx stops
// before the next change and returns the results so far.
func (f *Fixer) Apply(ctx context.Context, changes []Change) ([]Result, error) {
	logger := logging.WithContext(ctx, f.logger)
	claimed := make(map[string]struct{}, len(changes))
	results := make([]Result, 0, len(changes))
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := Result{Change: change}
		_, taken := claimed[change.To]
		switch {
		case taken || f.exists(change.To):
			res.Status = StatusTargetExists
			logging.WarnWithContext(logger, "rename target exists", "rename_target_exists",
				logging.String(logging.FieldPath, change.From),
				logging.String("target", change.To),
				logging.String(logging.FieldImpact, "the file keeps its garbled name"),
				logging.String(logging.FieldErrorHint, "compare the two files and remove one"),
			)
		case f.DryRun:
			res.Status = StatusWouldRename
			claimed[change.To] = struct{}{}
		default:
			if err := f.rename(change.From, change.To); err != nil {
				res.Status = StatusFailed
				res.Err = err
				logger.Debug("rename failed", logging.String(logging.FieldPath, change.From), logging.Error(err))
				break
			}
			res.Status = StatusRenamed
			claimed[change.To] = struct{}{}
		}
		results = append(results, res)
	}
	return results, nil
}

// Count returns how many results have status.
func Count(results []Result, status Status) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Renames maps old path to new path for the results that moved a file.
func Renames(results []Result) map[string]string {
	out := make(map[string]string)
	for _, r := range results {
		if r.Status == StatusRenamed {
			out[r.From] = r.To
		}
	}
	return out
}

type reportEntry struct {
	OriginalPath string `json:"original_path"`
	NewPath      string `json:"new_path"`
}

// WriteReport records the renamed (or, on a dry run, renameable) files as a
// JSON array of {"original_path", "new_path"} objects with paths relative to
// root.
func WriteReport(path, root string, results []Result) error {
	entries := make([]reportEntry, 0, len(results))
	for _, r := range results {
		if r.Status != StatusRenamed && r.Status != StatusWouldRename {
			continue
		}
		entries = append(entries, reportEntry{
			OriginalPath: manifest.RelativePath(root, r.From),
			NewPath:      manifest.RelativePath(root, r.To),
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode rename report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write rename report: %w", err)
	}
	return nil
}
