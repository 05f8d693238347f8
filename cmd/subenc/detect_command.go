package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subenc/internal/detection"
	"subenc/internal/discovery"
	"subenc/internal/history"
	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/report"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Guess the encoding of every subtitle file and write the manifest",
		Long: "Walks the root for subtitle files, guesses each file's text encoding, and writes\n" +
			"the results to encodings.json at the root. No subtitle file is modified.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startPhase(cmd, history.PhaseDetect)
			if errors.Is(err, errRootMissing) {
				return nil
			}
			if err != nil {
				return err
			}
			defer env.close()
			return runDetect(cmd, env)
		},
	}
}

func runDetect(cmd *cobra.Command, env *phaseEnv) error {
	runCtx := env.runContext(cmd.Context(), history.PhaseDetect)
	logger := logging.WithContext(runCtx, env.logger)
	logger.Info("detect started", logging.String("root", env.root))

	stop := report.StartSpinner(env.stderr, env.progress, "Looking for subtitle files...")
	found, err := discovery.Discover(runCtx, env.root, env.cfg.Scan.Extensions)
	stop()
	if err != nil {
		env.recorder.finish(runCtx, statusFor(err), history.Counts{}, nil)
		return fmt.Errorf("discover subtitle files: %w", err)
	}
	skipped := make([]report.Problem, 0, len(found.Skipped))
	for _, s := range found.Skipped {
		skipped = append(skipped, report.Problem(s))
	}
	env.printer.DiscoverySkipped(skipped)
	if found.Aliases > 0 {
		logger.Debug("symlinked duplicates collapsed", logging.Int("aliases", found.Aliases))
	}

	env.printer.ScanStarted(len(found.Files))
	progress := report.NewProgress(env.stderr, env.progress, len(found.Files), "Detecting")
	runner := detection.NewRunner(detection.Options{
		Workers: env.cfg.WorkerCount(),
		Logger:  env.logger,
		OnFile:  progress.Add,
	})
	result, runErr := runner.Run(runCtx, env.root, found.Files)
	progress.Close()
	env.printer.DetectSummary(result)

	counts := history.Counts{
		Files:     len(found.Files),
		Succeeded: len(result.Entries),
		Failed:    len(result.Failures),
		Pending:   result.Pending,
	}
	failures := failureRecords(result.Failures, func(f detection.Failure) (string, error) { return f.Path, f.Err })

	if runErr != nil {
		fmt.Fprintf(env.stderr, "Interrupted; %s was not written.\n", env.cfg.Scan.ManifestName)
		env.recorder.finish(runCtx, statusFor(runErr), counts, failures)
		return runErr
	}

	path := env.cfg.ManifestPath()
	if err := manifest.Write(path, result.Manifest()); err != nil {
		env.recorder.finish(runCtx, history.StatusFailed, counts, failures)
		return fmt.Errorf("write manifest: %w", err)
	}
	env.printer.ManifestWritten(path, result)
	env.recorder.finish(runCtx, history.StatusCompleted, counts, failures)

	logger.Info("detect finished",
		logging.Int("files", counts.Files),
		logging.Int("detected", counts.Succeeded),
		logging.Int("errors", counts.Failed),
		logging.String("manifest", path),
	)
	return nil
}
