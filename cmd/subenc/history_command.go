package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"subenc/internal/history"
	"subenc/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent detect and transcode runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (history.enabled = false).")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if runID != "" {
				return showRun(cmd, store, runID, out)
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(out, report.RunTable(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show one run and its failures (id or id prefix)")
	return cmd
}

func showRun(cmd *cobra.Command, store *history.Store, id string, out io.Writer) error {
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	failures, err := store.Failures(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	newStatusWriter(out).run(run)
	if len(failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.FailureTable(failures))
	}
	return nil
}
