package detection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"subenc/internal/charset"
	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/workpool"
)

// Options configures a Runner.
type Options struct {
	Workers int
	Logger  *slog.Logger
	// OnFile runs after each file is examined; used for progress output.
	OnFile func()
	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// Runner fans the detector out over files.
type Runner struct {
	workers  int
	logger   *slog.Logger
	onFile   func()
	readFile func(string) ([]byte, error)
}

// Failure is a file that could not be read.
type Failure struct {
	Path string
	Err  error
}

// Result partitions the outcomes of one run.
type Result struct {
	Entries  []manifest.Entry
	Failures []Failure
	// Duplicates counts input paths dropped because they were already listed.
	Duplicates int
	// Pending counts files never examined because the run was interrupted.
	Pending int
}

// LabelCount is one row of Result.Histogram.
type LabelCount struct {
	Encoding string
	Files    int
}

// NewRunner constructs a Runner.
func NewRunner(opts Options) *Runner {
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &Runner{
		workers:  opts.Workers,
		logger:   logging.NewComponentLogger(opts.Logger, "detection"),
		onFile:   opts.OnFile,
		readFile: readFile,
	}
}

// Examine reads path in full and guesses its encoding. The entry path is
// stored relative to root.
func (r *Runner) Examine(root, path string) Outcome {
	data, err := r.readFile(path)
	if err != nil {
		return IOError{Path: path, Err: err}
	}
	return Detected{Entry: manifest.Entry{
		Path:     manifest.RelativePath(root, path),
		Encoding: charset.Detect(data),
	}}
}

// Run examines every file and folds the outcomes. Files are processed in
// parallel; Entries keeps the order of files. A cancelled ctx stops dispatch
// and returns ctx.Err() with the partial result.
func (r *Runner) Run(ctx context.Context, root string, files []string) (Result, error) {
	logger := logging.WithContext(ctx, r.logger)

	unique, duplicates := uniquePaths(files)
	if duplicates > 0 {
		logging.WarnWithContext(logger, "duplicate candidate paths ignored", "detect_duplicate_paths",
			logging.Int("duplicates", duplicates),
			logging.String(logging.FieldImpact, "each file is examined once"),
		)
	}

	collected, err := workpool.Map(ctx, unique, workpool.Options{Limit: r.workers, OnDone: r.onFile}, func(path string) Outcome {
		return r.Examine(root, path)
	})

	result := Result{Duplicates: duplicates, Pending: collected.Pending()}
	for i, outcome := range collected.Values {
		if !collected.Done[i] {
			continue
		}
		switch o := outcome.(type) {
		case Detected:
			result.Entries = append(result.Entries, o.Entry)
			logger.Debug("encoding detected",
				logging.String(logging.FieldPath, o.Entry.Path),
				logging.String(logging.FieldEncoding, o.Entry.Encoding),
			)
		case IOError:
			result.Failures = append(result.Failures, Failure(o))
			logger.Debug("read failed", logging.String(logging.FieldPath, o.Path), logging.Error(o.Err))
		default:
			panic(fmt.Sprintf("detection: unhandled outcome %T", outcome))
		}
	}
	return result, err
}

// Manifest wraps the detected entries for persistence.
func (r Result) Manifest() *manifest.Manifest {
	entries := make([]manifest.Entry, len(r.Entries))
	copy(entries, r.Entries)
	return &manifest.Manifest{Encodings: entries}
}

// Histogram counts files per encoding label, most common first.
func (r Result) Histogram() []LabelCount {
	counts := make(map[string]int)
	for _, entry := range r.Entries {
		counts[entry.Encoding]++
	}
	rows := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, LabelCount{Encoding: label, Files: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Files != rows[j].Files {
			return rows[i].Files > rows[j].Files
		}
		return rows[i].Encoding < rows[j].Encoding
	})
	return rows
}

func uniquePaths(files []string) ([]string, int) {
	seen := make(map[string]struct{}, len(files))
	unique := make([]string, 0, len(files))
	for _, path := range files {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, path)
	}
	return unique, len(files) - len(unique)
}
