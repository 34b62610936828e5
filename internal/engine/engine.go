// Package engine runs one analysis pass: seed, walk, promote, emit.
//
// A pass owns its tracker and final map; nothing is shared across passes, so
// a failed or cancelled pass leaves no trace and callers keep their previous
// plan.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"asset-bundler/internal/assetpath"
	bundleerr "asset-bundler/internal/errors"
	"asset-bundler/internal/fsys"
	"asset-bundler/internal/naming"
	"asset-bundler/internal/oracle"
	"asset-bundler/internal/plan"
	"asset-bundler/internal/progress"
	"asset-bundler/internal/registry"
	"asset-bundler/internal/tracker"
)

// Phase labels reported to the progress sink.
const (
	PhaseWalk    = "walk"
	PhasePromote = "promote"
)

// Options tune an Engine. Zero values are usable.
type Options struct {
	// Workers > 1 runs oracle calls concurrently. Tracking is still applied
	// in bundle order, so the plan is identical to a serial pass.
	Workers  int
	Progress progress.Sink
	Logger   *slog.Logger
}

// Engine resolves declarations into a plan.
type Engine struct {
	namer   *naming.Namer
	oracle  oracle.Oracle
	fs      fsys.FS
	filter  *assetpath.Filter
	sink    progress.Sink
	log     *slog.Logger
	workers int
}

// New creates an Engine.
func New(namer *naming.Namer, o oracle.Oracle, fs fsys.FS, filter *assetpath.Filter, opts Options) *Engine {
	e := &Engine{
		namer:   namer,
		oracle:  o,
		fs:      fs,
		filter:  filter,
		sink:    opts.Progress,
		log:     opts.Logger,
		workers: opts.Workers,
	}
	if e.sink == nil {
		e.sink = progress.Nop{}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Input is the registry state a pass starts from.
type Input struct {
	Version      string
	Declarations []registry.Declaration
	Patches      []registry.Patch
}

// InputFrom captures the current state of r.
func InputFrom(r *registry.Registry) Input {
	return Input{
		Version:      r.Version().String(),
		Declarations: r.Declarations(),
		Patches:      r.Patches(),
	}
}

// seedBundle is a bundle with its seeded assets, in first-appearance order.
type seedBundle struct {
	name   string
	assets []string
}

// pass is the mutable state of one Analyze call.
type pass struct {
	final   map[string]string
	bundles []seedBundle
	skipped []string
	tracker *tracker.Tracker
}

// Analyze runs a full pass. On error no plan is returned.
func (e *Engine) Analyze(ctx context.Context, in Input) (*plan.Plan, error) {
	start := time.Now()
	p := &pass{final: make(map[string]string)}
	p.tracker = tracker.New(e.namer, func(a string) bool {
		_, ok := p.final[a]
		return ok
	})

	if err := e.seed(p, in.Declarations); err != nil {
		return nil, err
	}
	if err := e.walk(ctx, p); err != nil {
		return nil, err
	}
	shared, err := e.promote(ctx, p)
	if err != nil {
		return nil, err
	}
	out := e.emit(p, in)

	e.log.Info("analysis complete",
		"version", out.Version,
		"bundles", len(out.Bundles),
		"assets", out.AssetCount(),
		"shared", shared,
		"skipped", len(out.Skipped),
		"duration", time.Since(start).String())
	return out, nil
}

func (e *Engine) seed(p *pass, decls []registry.Declaration) error {
	index := make(map[string]int)
	for _, d := range decls {
		key := naming.Normalize(d.Asset)
		if !e.isFile(key) || !e.filter.Valid(key) {
			e.log.Debug("skip declaration", "asset", key)
			p.skipped = append(p.skipped, key)
			continue
		}
		if d.Strategy == naming.None {
			continue
		}
		name, err := e.namer.Name(d.Strategy, key, d.Group, false, false)
		if err != nil {
			return bundleerr.NewDeclarationError(key, err.Error())
		}
		p.final[key] = name
		i, ok := index[name]
		if !ok {
			i = len(p.bundles)
			index[name] = i
			p.bundles = append(p.bundles, seedBundle{name: name})
		}
		p.bundles[i].assets = append(p.bundles[i].assets, key)
	}
	e.log.Debug("seeded", "assets", len(p.final), "bundles", len(p.bundles))
	return nil
}

func (e *Engine) walk(ctx context.Context, p *pass) error {
	if e.workers > 1 && len(p.bundles) > 1 {
		return e.walkParallel(ctx, p)
	}
	total := len(p.bundles)
	for i, b := range p.bundles {
		if err := e.checkpoint(ctx, PhaseWalk, b.name, i, total); err != nil {
			return err
		}
		deps, err := e.oracle.Dependencies(ctx, b.assets, true)
		if err != nil {
			return e.oracleError(ctx, b.name, i, total, err)
		}
		if err := e.track(p, b.name, deps); err != nil {
			return err
		}
	}
	e.sink.Report(PhaseWalk, 1)
	return nil
}

// walkParallel queries the oracle concurrently and replays the results into
// the tracker in bundle order.
func (e *Engine) walkParallel(ctx context.Context, p *pass) error {
	total := len(p.bundles)
	results := make([][]string, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, b := range p.bundles {
		if err := e.checkpoint(ctx, PhaseWalk, b.name, i, total); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			deps, err := e.oracle.Dependencies(gctx, b.assets, true)
			if err != nil {
				return e.oracleError(ctx, b.name, i, total, err)
			}
			results[i] = deps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, b := range p.bundles {
		if err := e.track(p, b.name, results[i]); err != nil {
			return err
		}
	}
	e.sink.Report(PhaseWalk, 1)
	return nil
}

func (e *Engine) track(p *pass, bundle string, deps []string) error {
	for _, dep := range deps {
		dep = naming.Normalize(dep)
		if e.fs.IsDir(dep) || e.filter.Ignored(dep) || !e.filter.Valid(dep) {
			continue
		}
		if err := p.tracker.Track(dep, bundle); err != nil {
			return fmt.Errorf("track %q for %q: %w", dep, bundle, err)
		}
	}
	return nil
}

func (e *Engine) promote(ctx context.Context, p *pass) (int, error) {
	for _, s := range p.tracker.SingleOwners() {
		p.final[s.Asset] = s.Bundle
	}
	dups := p.tracker.Duplicates()
	p.tracker.Reset()

	total := len(dups)
	for i, asset := range dups {
		if err := e.checkpoint(ctx, PhasePromote, asset, i, total); err != nil {
			return 0, err
		}
		name, err := e.namer.Name(naming.ByDirectory, asset, "", true, false)
		if err != nil {
			return 0, fmt.Errorf("shared name for %q: %w", asset, err)
		}
		p.final[asset] = name
	}
	if total > 0 {
		e.sink.Report(PhasePromote, 1)
	}
	return total, nil
}

func (e *Engine) emit(p *pass, in Input) *plan.Plan {
	out := plan.FromAssignments(in.Version, p.final)
	out.Skipped = p.skipped
	for _, patch := range in.Patches {
		kept := make([]string, 0, len(patch.Assets))
		for _, a := range patch.Assets {
			if e.isFile(a) {
				kept = append(kept, a)
				continue
			}
			e.log.Debug("prune patch entry", "patch", patch.Name, "asset", a)
		}
		if len(kept) > 0 {
			out.Patches = append(out.Patches, plan.Patch{Name: patch.Name, Assets: kept})
		}
	}
	return out
}

// isFile reports whether key names an existing file; directories never
// become assets.
func (e *Engine) isFile(key string) bool {
	return e.fs.Exists(key) && !e.fs.IsDir(key)
}

// checkpoint reports progress and honours both cancellation channels.
func (e *Engine) checkpoint(ctx context.Context, phase, at string, done, total int) error {
	if e.sink.Report(phase, float64(done)/float64(total)) {
		return &bundleerr.CancelledError{Phase: phase, At: at, Done: done, Total: total}
	}
	if err := ctx.Err(); err != nil {
		return &bundleerr.CancelledError{Phase: phase, At: at, Done: done, Total: total, Cause: err}
	}
	return nil
}

func (e *Engine) oracleError(ctx context.Context, bundle string, done, total int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &bundleerr.CancelledError{Phase: PhaseWalk, At: bundle, Done: done, Total: total, Cause: ctxErr}
	}
	return bundleerr.NewOracleError(bundle, err)
}
