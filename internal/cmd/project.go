package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"asset-bundler/internal/depgraph"
	"asset-bundler/internal/oracle"
	"asset-bundler/internal/plan"
	"asset-bundler/internal/registry"
	"asset-bundler/internal/store"
	"asset-bundler/internal/walk"
)

// open loads the rules file into a fresh registry. rec is nil on first run.
func (a *app) open() (*registry.Registry, *store.Record, error) {
	rec, err := store.Load(a.fs.Fs(), a.cfg.Paths.Rules)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.New(a.namer, a.fs, a.cfg.RegistryOptions())
	if err != nil {
		return nil, nil, err
	}
	if rec != nil {
		reg.Restore(rec.State)
	}
	return reg, rec, nil
}

// save writes the registry state. With a nil plan the previously recorded
// plan is carried over unchanged.
func (a *app) save(reg *registry.Registry, prev *store.Record, p *plan.Plan) error {
	rec := store.NewRecord(reg.Snapshot(), p)
	if p == nil && prev != nil {
		rec.PlanVersion, rec.Fingerprint, rec.Bundles = prev.PlanVersion, prev.Fingerprint, prev.Bundles
	}
	if err := store.Save(a.fs.Fs(), a.cfg.Paths.Rules, rec); err != nil {
		return fmt.Errorf("save %s: %w", a.cfg.Paths.Rules, err)
	}
	return nil
}

// expand turns a selection of files and directories into asset keys.
func (a *app) expand(args []string) ([]string, error) {
	return walk.Expand(a.fs.Fs(), args, walk.Options{Filter: a.filter})
}

// loadOracle reads the dependency graph. A missing graph is an empty one:
// every bundle then holds only its declared assets.
func (a *app) loadOracle() (oracle.Oracle, error) {
	g, err := depgraph.Load(a.fs.Fs(), a.cfg.Paths.Graph)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.log.Warn("dependency graph not found, analyzing without dependencies", "path", a.cfg.Paths.Graph)
		g = depgraph.BuildFrom(nil)
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", a.cfg.Paths.Graph, err)
	}
	if a.cfg.Analysis.CacheSize <= 0 {
		return g, nil
	}
	c, err := oracle.NewCached(g, a.cfg.Analysis.CacheSize)
	if err != nil {
		return nil, err
	}
	return c, nil
}
