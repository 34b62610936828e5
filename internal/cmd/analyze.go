package cmd

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"

	"github.com/spf13/cobra"

	"asset-bundler/internal/diff"
	"asset-bundler/internal/engine"
	"asset-bundler/internal/meta"
	"asset-bundler/internal/oracle"
	"asset-bundler/internal/plan"
	"asset-bundler/internal/progress"
	"asset-bundler/internal/registry"
	"asset-bundler/internal/report"
	"asset-bundler/internal/validate"
)

type analyzeOptions struct {
	report  bool
	diff    bool
	dryRun  bool
	workers int
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Resolve the declared rules into a bundle plan",
		Long: `Resolve every declaration against the dependency graph and record the
resulting plan in the rules file.

With --report a full ZIP report (and a delta report against the previous
plan, if any) is written under paths.reports. With --diff the change to the
previous plan is printed as a unified diff.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.loadOracle()
			if err != nil {
				return err
			}
			_, err = a.analyze(cmd.Context(), cmd.OutOrStdout(), o, opts)
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.report, "report", false, "write ZIP reports under paths.reports")
	f.BoolVar(&opts.diff, "diff", false, "print a unified diff against the previous plan")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "do not record the plan")
	f.IntVarP(&opts.workers, "workers", "w", 0, "concurrent oracle queries (overrides analysis.workers)")
	return cmd
}

// analyze runs one pass and records its plan. Nothing is written when the
// pass fails.
func (a *app) analyze(ctx context.Context, out io.Writer, o oracle.Oracle, opts analyzeOptions) (*plan.Plan, error) {
	reg, rec, err := a.open()
	if err != nil {
		return nil, err
	}
	if err := validate.Declarations(reg.Declarations()); err != nil {
		return nil, err
	}

	workers := a.cfg.Analysis.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	eng := engine.New(a.namer, o, a.fs, a.filter, engine.Options{
		Workers:  workers,
		Progress: progress.NewLog(a.log),
		Logger:   a.log,
	})
	p, err := eng.Analyze(ctx, engine.InputFrom(reg))
	if err != nil {
		return nil, err
	}
	if err := validate.Plan(p); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	prev := rec.Plan()
	if opts.diff {
		if body, _ := diff.Plans(prev, p, diff.Options{}); body != "" {
			fmt.Fprint(out, body)
		}
	}
	if opts.report {
		if err := a.writeReports(out, prev, p); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(out, "%d bundles, %d assets, %d patches, %d skipped\n",
		len(p.Bundles), p.AssetCount(), len(p.Patches), len(p.Skipped))

	// The pruned sub-packages replace the declared ones.
	reg.SetPatches(patchesOf(p))
	switch {
	case opts.dryRun:
	case rec != nil && rec.Fingerprint == p.Fingerprint() && rec.PlanVersion == p.Version &&
		samePatches(rec.Patches, reg.Patches()):
		a.log.Debug("plan unchanged", "fingerprint", p.Fingerprint())
	default:
		if err := a.save(reg, rec, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (a *app) writeReports(out io.Writer, prev, curr *plan.Plan) error {
	opts := report.Options{Title: "Bundle plan"}
	if inf := meta.Detect(a.fs.Fs()); inf.Engine != "" {
		opts.Title = "Bundle plan for " + inf.String()
	}
	dir := a.cfg.Paths.Reports

	full := path.Join(dir, "plan-"+curr.Version+".zip")
	if err := report.WriteFile(a.fs.Fs(), full, func(w io.Writer) error {
		return report.Full(w, curr, opts)
	}); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	fmt.Fprintf(out, "wrote %s\n", full)

	if prev == nil {
		return nil
	}
	delta := path.Join(dir, "delta-"+curr.Version+".zip")
	if err := report.WriteFile(a.fs.Fs(), delta, func(w io.Writer) error {
		return report.Delta(w, prev, curr, opts)
	}); err != nil {
		return fmt.Errorf("write %s: %w", delta, err)
	}
	fmt.Fprintf(out, "wrote %s\n", delta)
	return nil
}

func patchesOf(p *plan.Plan) []registry.Patch {
	out := make([]registry.Patch, len(p.Patches))
	for i, pt := range p.Patches {
		out[i] = registry.Patch{Name: pt.Name, Assets: pt.Assets}
	}
	return out
}

func samePatches(a, b []registry.Patch) bool {
	return slices.EqualFunc(a, b, func(x, y registry.Patch) bool {
		return x.Name == y.Name && slices.Equal(x.Assets, y.Assets)
	})
}
