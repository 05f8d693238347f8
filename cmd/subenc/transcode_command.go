package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subenc/internal/charset"
	"subenc/internal/history"
	"subenc/internal/logging"
	"subenc/internal/manifest"
	"subenc/internal/report"
	"subenc/internal/transcode"
)

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcode",
		Short: "Rewrite every non-UTF-8 file listed in the manifest as UTF-8",
		Long: "Reads encodings.json from the root and rewrites each listed file whose encoding\n" +
			"is not UTF-8. Run `subenc detect` first, and correct any wrong guesses in the\n" +
			"manifest before transcoding.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startPhase(cmd, history.PhaseTranscode)
			if errors.Is(err, errRootMissing) {
				return nil
			}
			if err != nil {
				return err
			}
			defer env.close()
			return runTranscode(cmd, env)
		},
	}
}

func runTranscode(cmd *cobra.Command, env *phaseEnv) error {
	runCtx := env.runContext(cmd.Context(), history.PhaseTranscode)
	logger := logging.WithContext(runCtx, env.logger)

	path := env.cfg.ManifestPath()
	m, err := manifest.Read(path)
	if errors.Is(err, manifest.ErrMissing) {
		fmt.Fprintf(env.stderr, "%s not found at %s\n", env.cfg.Scan.ManifestName, path)
		fmt.Fprintln(env.stderr, "Please run `subenc detect` first to generate the encodings file.")
		env.recorder.finish(runCtx, history.StatusFailed, history.Counts{}, nil)
		return nil
	}
	if err != nil {
		env.recorder.finish(runCtx, history.StatusFailed, history.Counts{}, nil)
		return err
	}

	env.printer.TranscodeStarted(path, len(m.Encodings))
	logger.Info("transcode started", logging.String("manifest", path), logging.Int("entries", len(m.Encodings)))

	progress := report.NewProgress(env.stderr, env.progress, len(m.Encodings), "Transcoding")
	runner := transcode.NewRunner(env.root, transcode.Options{
		Workers: env.cfg.WorkerCount(),
		Logger:  env.logger,
		FS:      transcode.OSFileSystem(env.cfg.Transcode.AtomicWrite),
		OnEntry: progress.Add,
	})
	tally, runErr := runner.Run(runCtx, m)
	progress.Close()

	if env.cfg.Transcode.UpdateManifest && len(tally.Converted) > 0 {
		if n := m.MarkConverted(env.root, tally.Converted, charset.Target); n > 0 {
			if err := manifest.Write(path, m); err != nil {
				logging.WarnWithContext(logger, "failed to update manifest", "manifest_update_failed",
					logging.String("manifest", path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "rewritten files keep their old label and would be decoded again"),
					logging.String(logging.FieldErrorHint, "run `subenc detect` before transcoding again"),
				)
			}
		}
	}

	env.printer.TranscodeSummary(tally)

	counts := history.Counts{
		Files:     len(m.Encodings),
		Succeeded: tally.Transcoded,
		Skipped:   tally.Skipped,
		Failed:    len(tally.Failures),
		Pending:   tally.Pending,
	}
	failures := failureRecords(tally.Failures, func(f transcode.Failure) (string, error) { return f.Path, f.Err })
	env.recorder.finish(runCtx, statusFor(runErr), counts, failures)

	logger.Info("transcode finished",
		logging.Int("transcoded", tally.Transcoded),
		logging.Int("skipped", tally.Skipped),
		logging.Int("errors", len(tally.Failures)),
		logging.Int("pending", tally.Pending),
	)
	return runErr
}
