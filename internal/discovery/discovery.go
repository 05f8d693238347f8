// Package discovery enumerates candidate subtitle files beneath a root.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Skipped records a directory or entry the walk could not read.
type Skipped struct {
	Path string
	Err  error
}

// Result holds the discovered files and the parts of the tree that were
// skipped because they could not be read.
type Result struct {
	Files   []string
	Skipped []Skipped
	// Aliases counts symlinks dropped because their target was already listed.
	Aliases int
}

// VisitFunc is called for every entry below the root that is not a
// directory. Returning an error stops the walk.
type VisitFunc func(path string, d fs.DirEntry) error

// Walk visits root depth first in lexical order. Unreadable subdirectories are
// recorded and skipped; an unreadable root, a cancelled ctx or an error from
// visit stops the walk.
func Walk(ctx context.Context, root string, visit VisitFunc) ([]Skipped, error) {
	var skipped []Skipped
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			skipped = append(skipped, Skipped{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return visit(path, d)
	})
	return skipped, err
}

type candidate struct {
	path   string
	target string
	link   bool
}

// Discover walks root and returns every regular file whose extension matches
// one of extensions (case-insensitive, with or without a leading dot). Symlinks
// count when they resolve to a regular file; a file reachable through several
// names is listed once, preferring the name that is not a link. Files are
// sorted for a deterministic manifest order. Unreadable subdirectories and
// dangling links are recorded in Result.Skipped and do not stop the walk; an
// unreadable root is returned as an error.
func Discover(ctx context.Context, root string, extensions []string) (Result, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed["."+ext] = struct{}{}
		}
	}

	var (
		result     Result
		candidates []candidate
	)
	skipped, err := Walk(ctx, root, func(path string, d fs.DirEntry) error {
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		c := candidate{path: path, target: path}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				result.Skipped = append(result.Skipped, Skipped{Path: path, Err: err})
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			c.link = true
		case !d.Type().IsRegular():
			return nil
		}
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			c.target = resolved
		}
		candidates = append(candidates, c)
		return nil
	})
	result.Skipped = append(skipped, result.Skipped...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Files = uniqueTargets(candidates, &result.Aliases)
			return result, err
		}
		return Result{}, err
	}
	result.Files = uniqueTargets(candidates, &result.Aliases)
	return result, nil
}

// uniqueTargets keeps one path per resolved target and returns them sorted.
func uniqueTargets(candidates []candidate, aliases *int) []string {
	byTarget := make(map[string]int, len(candidates))
	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		i, seen := byTarget[c.target]
		if !seen {
			byTarget[c.target] = len(kept)
			kept = append(kept, c)
			continue
		}
		*aliases++
		if kept[i].link && !c.link {
			kept[i] = c
		}
	}
	files := make([]string, 0, len(kept))
	for _, c := range kept {
		files = append(files, c.path)
	}
	sort.Strings(files)
	return files
}
