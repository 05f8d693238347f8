package logging

import (
	"context"
	"log/slog"
	"strings"
)

type runKey struct{}

type runInfo struct {
	id    string
	phase string
}

// WithRun stores the run id and phase on ctx for WithContext to pick up.
func WithRun(ctx context.Context, runID, phase string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runKey{}, runInfo{id: runID, phase: phase})
}

// RunFromContext returns the run id and phase stored by WithRun.
func RunFromContext(ctx context.Context) (runID, phase string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	info, ok := ctx.Value(runKey{}).(runInfo)
	if !ok {
		return "", "", false
	}
	return info.id, info.phase, true
}

// WithContext returns a logger augmented with the run fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	runID, phase, ok := RunFromContext(ctx)
	if !ok {
		return logger
	}
	args := make([]any, 0, 2)
	if runID != "" {
		args = append(args, slog.String(FieldRunID, runID))
	}
	if phase != "" {
		args = append(args, slog.String(FieldPhase, phase))
	}
	return logger.With(args...)
}

// FormatSubject builds the "phase·runid" subject used in console output. Run
// ids are shortened to their first eight characters.
func FormatSubject(phase, runID string) string {
	phase = strings.TrimSpace(phase)
	runID = strings.TrimSpace(runID)
	if len(runID) > 8 {
		runID = runID[:8]
	}
	switch {
	case phase != "" && runID != "":
		return phase + "·" + runID
	case phase != "":
		return phase
	default:
		return runID
	}
}
