// Package prune removes clutter from a subtitle tree: Finder metadata,
// files too small to hold a subtitle, optionally anything that is not a
// subtitle, and the directories left empty afterwards.
package prune

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"subenc/internal/discovery"
	"subenc/internal/logging"
)

// Reason says why a path is removed.
type Reason string

const (
	ReasonJunk     Reason = "junk"
	ReasonTiny     Reason = "tiny"
	ReasonStray    Reason = "not a subtitle"
	ReasonEmptyDir Reason = "empty directory"
)

// DefaultMaxTinySize is the largest file size treated as empty.
const DefaultMaxTinySize = 10

var junkNames = map[string]struct{}{
	".DS_Store": {},
	"Thumbs.db": {},
}

// Options selects what Plan proposes.
type Options struct {
	// Extensions are the subtitle extensions; used by Strays.
	Extensions []string
	// MaxTinySize is the size at or below which a file counts as empty.
	// Negative disables the rule.
	MaxTinySize int64
	// Strays also removes files whose extension is not in Extensions.
	Strays bool
	// Keep lists root-relative paths that are never removed.
	Keep []string
}

// Removal is one planned deletion.
type Removal struct {
	Path   string
	Reason Reason
	Dir    bool
}

// Plan lists the files to remove, then every directory below root that
// would be empty once they are gone, deepest first. Symlinks are never
// removed.
func Plan(ctx context.Context, root string, opts Options) ([]Removal, []discovery.Skipped, error) {
	allowed := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed["."+ext] = struct{}{}
		}
	}
	keep := make(map[string]struct{}, len(opts.Keep))
	for _, rel := range opts.Keep {
		keep[filepath.Join(root, rel)] = struct{}{}
	}

	var (
		removals []Removal
		gone     = make(map[string]struct{})
	)
	skipped, err := discovery.Walk(ctx, root, func(path string, d fs.DirEntry) error {
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := keep[path]; ok {
			return nil
		}
		reason, ok := fileReason(path, d, allowed, opts)
		if !ok {
			return nil
		}
		removals = append(removals, Removal{Path: path, Reason: reason})
		gone[path] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, skipped, err
	}

	dirs, err := emptyDirs(root, gone)
	if err != nil {
		return nil, skipped, err
	}
	return append(removals, dirs...), skipped, nil
}

func fileReason(path string, d fs.DirEntry, allowed map[string]struct{}, opts Options) (Reason, bool) {
	if _, ok := junkNames[d.Name()]; ok {
		return ReasonJunk, true
	}
	if opts.MaxTinySize >= 0 {
		if info, err := d.Info(); err == nil && info.Size() <= opts.MaxTinySize {
			return ReasonTiny, true
		}
	}
	if opts.Strays {
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return ReasonStray, true
		}
	}
	return "", false
}

// emptyDirs returns the directories below root whose every entry is in gone
// or is itself an empty directory, deepest first. gone is extended with them.
func emptyDirs(root string, gone map[string]struct{}) ([]Removal, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	var out []Removal
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		empty := true
		for _, e := range entries {
			if _, ok := gone[filepath.Join(dir, e.Name())]; !ok {
				empty = false
				break
			}
		}
		if empty {
			gone[dir] = struct{}{}
			out = append(out, Removal{Path: dir, Reason: ReasonEmptyDir, Dir: true})
		}
	}
	return out, nil
}

// Result is the outcome of one Removal.
type Result struct {
	Removal
	Err error
}

// Apply deletes the planned paths in order. Directories are removed with
// os.Remove, so one that gained an entry since Plan stays. A cancelled ctx
// stops before the next removal.
func Apply(ctx context.Context, removals []Removal, logger *slog.Logger) ([]Result, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "prune"))
	results := make([]Result, 0, len(removals))
	for _, r := range removals {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		err := os.Remove(r.Path)
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		if err != nil {
			logger.Debug("remove failed", logging.String(logging.FieldPath, r.Path), logging.Error(err))
		}
		results = append(results, Result{Removal: r, Err: err})
	}
	return results, nil
}
