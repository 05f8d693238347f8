package transcode

import (
	"context"
	"fmt"
	"log/slog"

	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/workpool"
)

// Options configures a Runner.
type Options struct {
	Workers int
	Logger  *slog.Logger
	// FS defaults to OSFileSystem(true).
	FS FileSystem
	// OnEntry runs after each entry is handled; used for progress output.
	OnEntry func()
}

// Failure is an entry that could not be transcoded.
type Failure struct {
	Path string
	Err  error
}

// Tally is the folded outcome of a run.
type Tally struct {
	Transcoded int
	Skipped    int
	Failures   []Failure
	// Converted lists the manifest paths that were rewritten.
	Converted []string
	// Replaced lists rewritten paths whose text contains U+FFFD.
	Replaced   []string
	BytesIn    int64
	BytesOut   int64
	Duplicates int
	// Pending counts entries never started because the run was interrupted.
	Pending int
}

// Total is the number of entries that were handled.
func (t Tally) Total() int {
	return t.Transcoded + t.Skipped + len(t.Failures)
}

// Runner fans the engine out over a manifest.
type Runner struct {
	root    string
	engine  *Engine
	workers int
	onEntry func()
	logger  *slog.Logger
}

// NewRunner constructs a Runner for manifests that live under root.
func NewRunner(root string, opts Options) *Runner {
	return &Runner{
		root:    root,
		engine:  NewEngine(root, opts.FS, opts.Logger),
		workers: opts.Workers,
		onEntry: opts.OnEntry,
		logger:  logging.NewComponentLogger(opts.Logger, "transcode"),
	}
}

// Run transcodes every entry of m. Duplicate paths are removed from m first
// so a file is never rewritten twice in one run. Entry failures are collected
// in the tally; only cancellation of ctx returns an error, together with the
// partial tally.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest) (Tally, error) {
	logger := logging.WithContext(ctx, r.logger)

	var tally Tally
	if m == nil {
		return tally, nil
	}
	for _, dup := range m.Dedupe(r.root) {
		tally.Duplicates++
		logging.WarnWithContext(logger, "duplicate manifest entry ignored", "manifest_duplicate",
			logging.String(logging.FieldPath, dup.Entry.Path),
			logging.String(logging.FieldEncoding, dup.Entry.Encoding),
			logging.String("kept_encoding", dup.Kept.Encoding),
			logging.Int("index", dup.Index),
			logging.String(logging.FieldImpact, "the first entry for this path is used"),
			logging.String(logging.FieldErrorHint, "remove the duplicate from the manifest"),
		)
	}

	collected, err := workpool.Map(ctx, m.Encodings, workpool.Options{Limit: r.workers, OnDone: r.onEntry}, func(entry manifest.Entry) Result {
		return r.engine.Transcode(ctx, entry)
	})

	tally.Pending = collected.Pending()
	for i, res := range collected.Values {
		if !collected.Done[i] {
			continue
		}
		switch v := res.(type) {
		case Skipped:
			tally.Skipped++
		case Transcoded:
			tally.Transcoded++
			tally.Converted = append(tally.Converted, v.Path)
			tally.BytesIn += int64(v.BytesIn)
			tally.BytesOut += int64(v.BytesOut)
			if v.Replaced {
				tally.Replaced = append(tally.Replaced, v.Path)
			}
		case Failed:
			tally.Failures = append(tally.Failures, Failure(v))
			logger.Debug("transcode failed", logging.String(logging.FieldPath, v.Path), logging.Error(v.Err))
		default:
			panic(fmt.Sprintf("transcode: unhandled result %T", res))
		}
	}
	return tally, err
}
