package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subenc/internal/history"
	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/prune"
	"subenc/internal/report"
	"subenc/internal/runlock"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var strays bool
	var maxTiny int64

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete .DS_Store files, near-empty files, and empty directories",
		Long: "Removes Finder and Explorer metadata files, files of at most --max-size bytes,\n" +
			"and directories left empty, deepest first. With --strays every file that is not\n" +
			"a subtitle is removed as well. The manifest and the run lock are always kept.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startPhase(cmd, history.PhasePrune)
			if errors.Is(err, errRootMissing) {
				return nil
			}
			if err != nil {
				return err
			}
			defer env.close()
			opts := prune.Options{
				Extensions:  env.cfg.Scan.Extensions,
				MaxTinySize: maxTiny,
				Strays:      strays,
				Keep:        []string{env.cfg.Scan.ManifestName, runlock.FileName},
			}
			return runPrune(cmd, env, opts, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List what would be deleted without deleting")
	cmd.Flags().BoolVar(&strays, "strays", false, "Also delete files that are not subtitles")
	cmd.Flags().Int64Var(&maxTiny, "max-size", prune.DefaultMaxTinySize, "Delete files of at most this many bytes (-1 disables)")
	return cmd
}

func runPrune(cmd *cobra.Command, env *phaseEnv, opts prune.Options, dryRun bool) error {
	runCtx := env.runContext(cmd.Context(), history.PhasePrune)
	logger := logging.WithContext(runCtx, env.logger)
	out := cmd.OutOrStdout()

	removals, skipped, err := prune.Plan(runCtx, env.root, opts)
	if err != nil {
		env.recorder.finish(runCtx, statusFor(err), history.Counts{}, nil)
		return fmt.Errorf("plan prune: %w", err)
	}
	problems := make([]report.Problem, 0, len(skipped))
	for _, s := range skipped {
		problems = append(problems, report.Problem(s))
	}
	env.printer.DiscoverySkipped(problems)

	rel := func(path string) string { return manifest.RelativePath(env.root, path) }
	files, dirs := 0, 0
	tally := func(r prune.Removal) {
		if r.Dir {
			dirs++
		} else {
			files++
		}
	}

	if dryRun {
		for _, r := range removals {
			fmt.Fprintf(out, "[WOULD DELETE] %s (%s)\n", rel(r.Path), r.Reason)
			tally(r)
		}
		fmt.Fprintf(out, "\nWould remove %d files and %d empty directories.\n", files, dirs)
		env.recorder.finish(runCtx, history.StatusCompleted, history.Counts{Files: len(removals), Succeeded: len(removals)}, nil)
		return nil
	}

	results, runErr := prune.Apply(runCtx, removals, env.logger)
	var failed []report.Problem
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, report.Problem{Path: rel(r.Path), Err: r.Err})
			continue
		}
		fmt.Fprintf(out, "[DELETED] %s (%s)\n", rel(r.Path), r.Reason)
		tally(r.Removal)
	}
	fmt.Fprintf(out, "\nRemoved %d files and %d empty directories.\n", files, dirs)
	if len(failed) > 0 {
		fmt.Fprintf(env.stderr, "Encountered %d errors:\n", len(failed))
		env.printer.Problems(failed)
	}

	counts := history.Counts{
		Files:     len(removals),
		Succeeded: files + dirs,
		Failed:    len(failed),
		Pending:   len(removals) - len(results),
	}
	env.recorder.finish(runCtx, statusFor(runErr), counts,
		failureRecords(failed, func(p report.Problem) (string, error) { return p.Path, p.Err }))
	logger.Info("prune finished",
		logging.Int("files", files),
		logging.Int("directories", dirs),
		logging.Int("errors", len(failed)),
	)
	return runErr
}
