package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"asset-bundler/internal/oracle"
	"asset-bundler/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze whenever the rules file or the dependency graph changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			graph := a.abs(a.cfg.Paths.Graph)

			o, err := a.loadOracle()
			if err != nil {
				return err
			}
			run := func(ctx context.Context, o oracle.Oracle) {
				if _, err := a.analyze(ctx, out, o, opts); err != nil {
					a.log.Error("analysis failed", "error", err)
				}
			}
			run(ctx, o)

			w, err := watch.New([]string{a.abs(a.cfg.Paths.Rules), graph}, watch.Options{Debounce: debounce, Logger: a.log})
			if err != nil {
				return err
			}
			defer w.Close()
			a.log.Info("watching", "rules", a.cfg.Paths.Rules, "graph", a.cfg.Paths.Graph)

			return w.Run(ctx, func(ctx context.Context, changed []string) error {
				for _, f := range changed {
					if f == graph {
						next, err := a.loadOracle()
						if err != nil {
							return err
						}
						o = next
						break
					}
				}
				run(ctx, o)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-analyzing")
	cmd.Flags().BoolVar(&opts.report, "report", false, "write ZIP reports after each pass")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent oracle queries (overrides analysis.workers)")
	return cmd
}
