package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"subenc/internal/config"
	"subenc/internal/history"
	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/namefix"
	"subenc/internal/report"
)

func newFixNamesCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var reportPath string

	cmd := &cobra.Command{
		Use:   "fix-names",
		Short: "Rename files whose Chinese names were garbled by an archive tool",
		Long: "Finds file names that are GBK bytes shown as code page 437 (for example\n" +
			"\"╓╨╬─.srt\") and renames them to the intended text (\"中文.srt\"). An existing\n" +
			"file with the repaired name is never overwritten. Entries in encodings.json\n" +
			"follow the renamed files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startPhase(cmd, history.PhaseFixNames)
			if errors.Is(err, errRootMissing) {
				return nil
			}
			if err != nil {
				return err
			}
			defer env.close()
			return runFixNames(cmd, env, dryRun, strings.TrimSpace(reportPath))
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be renamed without renaming")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the renames as JSON to this file")
	return cmd
}

func runFixNames(cmd *cobra.Command, env *phaseEnv, dryRun bool, reportPath string) error {
	runCtx := env.runContext(cmd.Context(), history.PhaseFixNames)
	logger := logging.WithContext(runCtx, env.logger)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Scanning '%s' for non-ASCII filenames...\n", env.root)
	changes, skipped, err := namefix.Plan(runCtx, env.root)
	if err != nil {
		env.recorder.finish(runCtx, statusFor(err), history.Counts{}, nil)
		return fmt.Errorf("scan file names: %w", err)
	}
	problems := make([]report.Problem, 0, len(skipped))
	for _, s := range skipped {
		problems = append(problems, report.Problem(s))
	}
	env.printer.DiscoverySkipped(problems)

	results, runErr := namefix.NewFixer(dryRun, env.logger).Apply(runCtx, changes)
	rel := func(path string) string { return manifest.RelativePath(env.root, path) }
	var failures []history.Failure
	for _, r := range results {
		switch r.Status {
		case namefix.StatusWouldRename:
			fmt.Fprintf(out, "[WOULD FIX] %s -> %s\n", rel(r.From), rel(r.To))
		case namefix.StatusRenamed:
			fmt.Fprintf(out, "[FIXED] %s -> %s\n", rel(r.From), rel(r.To))
		case namefix.StatusTargetExists:
			fmt.Fprintf(env.stderr, "[SKIP] Target exists: %s\n", rel(r.To))
		case namefix.StatusFailed:
			fmt.Fprintf(env.stderr, "[ERROR] %s: %v\n", rel(r.From), r.Err)
			failures = append(failures, history.Failure{Path: rel(r.From), Message: r.Err.Error()})
		}
	}

	if dryRun {
		fmt.Fprintf(out, "\nFound %d files that can be fixed.\n", namefix.Count(results, namefix.StatusWouldRename))
	} else {
		fmt.Fprintf(out, "\nSuccessfully fixed %d files.\n", namefix.Count(results, namefix.StatusRenamed))
		updateManifestNames(env, namefix.Renames(results), logger)
	}

	if reportPath != "" {
		expanded, err := config.ExpandPath(reportPath)
		if err == nil {
			err = namefix.WriteReport(expanded, env.root, results)
		}
		if err != nil {
			env.recorder.finish(runCtx, history.StatusFailed, fixNameCounts(changes, results), failures)
			return err
		}
		fmt.Fprintf(out, "Report saved to %s\n", expanded)
	}

	env.recorder.finish(runCtx, statusFor(runErr), fixNameCounts(changes, results), failures)
	logger.Info("fix-names finished",
		logging.Int("candidates", len(changes)),
		logging.Int("renamed", namefix.Count(results, namefix.StatusRenamed)),
		logging.Int("collisions", namefix.Count(results, namefix.StatusTargetExists)),
		logging.Int("errors", len(failures)),
	)
	return runErr
}

// updateManifestNames keeps an existing manifest pointing at the renamed
// files. A missing manifest is fine; any other failure is a warning.
func updateManifestNames(env *phaseEnv, renames map[string]string, logger *slog.Logger) {
	if len(renames) == 0 {
		return
	}
	path := env.cfg.ManifestPath()
	m, err := manifest.Read(path)
	if errors.Is(err, manifest.ErrMissing) {
		return
	}
	if err == nil {
		n := m.Rename(env.root, renames)
		if n == 0 {
			return
		}
		if err = manifest.Write(path, m); err == nil {
			logger.Info("manifest paths updated", logging.String("manifest", path), logging.Int("entries", n))
			return
		}
	}
	logging.WarnWithContext(logger, "manifest not updated after renames", "manifest_rename_failed",
		logging.String("manifest", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "renamed files keep their old paths in the manifest"),
		logging.String(logging.FieldErrorHint, "run `subenc detect` again"),
	)
}

func fixNameCounts(changes []namefix.Change, results []namefix.Result) history.Counts {
	return history.Counts{
		Files:     len(changes),
		Succeeded: namefix.Count(results, namefix.StatusRenamed) + namefix.Count(results, namefix.StatusWouldRename),
		Skipped:   namefix.Count(results, namefix.StatusTargetExists),
		Failed:    namefix.Count(results, namefix.StatusFailed),
		Pending:   len(changes) - len(results),
	}
}
