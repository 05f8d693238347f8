package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subenc/internal/config"
	"subenc/internal/history"
	"subenc/internal/logging"
	"subenc/internal/preflight"
	"subenc/internal/report"
	"subenc/internal/runlock"
)

// errRootMissing stops a phase without failing the command.
var errRootMissing = errors.New("root directory missing")

// phaseEnv is everything a phase command needs once its preconditions hold.
type phaseEnv struct {
	cfg      *config.Config
	root     string
	logger   *slog.Logger
	printer  report.Printer
	progress bool
	stderr   io.Writer
	lock     *runlock.Lock
	recorder *runRecorder
}

// startPhase checks the root, takes the run lock, and opens the history.
// A missing root is reported on stderr and returns errRootMissing.
func (c *commandContext) startPhase(cmd *cobra.Command, phase history.Phase) (*phaseEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	stderr := cmd.ErrOrStderr()
	root := cfg.Paths.Root

	check := preflight.CheckRoot(root, true)
	if check.Missing {
		fmt.Fprintf(stderr, "Root directory %s does not exist.\n", root)
		return nil, errRootMissing
	}
	if !check.Passed {
		return nil, fmt.Errorf("root directory: %s", check.Detail)
	}

	logger, err := c.loggerFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	lock, err := runlock.Acquire(root)
	if err != nil {
		return nil, err
	}

	env := &phaseEnv{
		cfg:    cfg,
		root:   root,
		logger: logger,
		printer: report.Printer{
			Out:    cmd.OutOrStdout(),
			Err:    stderr,
			Sample: cfg.Report.ErrorSample,
		},
		progress: report.ProgressEnabled(cfg.Report.Progress, stderr),
		stderr:   stderr,
		lock:     lock,
	}
	env.recorder = beginRun(cmd.Context(), cfg, phase, root, logger)
	return env, nil
}

// runContext tags ctx with the run id so every log line of the phase
// carries it.
func (e *phaseEnv) runContext(ctx context.Context, phase history.Phase) context.Context {
	return logging.WithRun(ctx, e.recorder.id, string(phase))
}

func (e *phaseEnv) close() {
	e.recorder.close()
	if err := e.lock.Release(); err != nil {
		logging.WarnWithContext(e.logger, "failed to release run lock", "lock_release_failed",
			logging.String("lock", e.lock.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next run may need to wait for this process to exit"),
		)
	}
}

// runRecorder writes the run to history when it is enabled. History
// failures are logged and otherwise ignored.
type runRecorder struct {
	id     string
	store  *history.Store
	run    *history.Run
	logger *slog.Logger
}

func beginRun(ctx context.Context, cfg *config.Config, phase history.Phase, root string, logger *slog.Logger) *runRecorder {
	rec := &runRecorder{id: uuid.NewString(), logger: logger}
	if !cfg.History.Enabled {
		return rec
	}

	store, err := history.Open(cfg)
	if err != nil {
		rec.warn("run history unavailable", err)
		return rec
	}
	run, err := store.Begin(context.WithoutCancel(ctx), phase, root)
	if err != nil {
		_ = store.Close()
		rec.warn("failed to record run start", err)
		return rec
	}
	rec.id = run.ID
	rec.store = store
	rec.run = run
	return rec
}

func (r *runRecorder) finish(ctx context.Context, status history.Status, counts history.Counts, failures []history.Failure) {
	if r.store == nil {
		return
	}
	if err := r.store.Finish(context.WithoutCancel(ctx), r.run, status, counts, failures); err != nil {
		r.warn("failed to record run result", err)
	}
}

func (r *runRecorder) close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

func (r *runRecorder) warn(msg string, err error) {
	logging.WarnWithContext(r.logger, msg, "history_unavailable",
		logging.Error(err),
		logging.String(logging.FieldImpact, "this run is missing from `subenc history`"),
		logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
	)
}

// statusFor maps a phase's terminal error to a history status.
func statusFor(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusCompleted
	case errors.Is(err, context.Canceled):
		return history.StatusInterrupted
	default:
		return history.StatusFailed
	}
}

func failureRecords[T any](items []T, fn func(T) (string, error)) []history.Failure {
	out := make([]history.Failure, 0, len(items))
	for _, item := range items {
		path, err := fn(item)
		out = append(out, history.Failure{Path: path, Message: err.Error()})
	}
	return out
}
