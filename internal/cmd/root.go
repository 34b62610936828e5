// Package cmd implements the asset-bundler command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"asset-bundler/internal/assetpath"
	"asset-bundler/internal/config"
	"asset-bundler/internal/fsys"
	"asset-bundler/internal/logging"
	"asset-bundler/internal/naming"
)

// app holds what every subcommand needs. It is filled by setup before the
// subcommand runs.
type app struct {
	cfgFile  string
	root     string
	logLevel string

	v      *viper.Viper
	cfg    *config.Config
	log    *slog.Logger
	fs     *fsys.Afero
	absDir string
	namer  *naming.Namer
	filter *assetpath.Filter
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree with its own configuration, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "asset-bundler",
		Short: "Plan asset bundles from grouping rules and a dependency graph",
		Long: `asset-bundler partitions the content files of a project into bundles.

Grouping rules are declared per asset (explicit group, by file name or by
directory) and stored in the rules file. The analyze command resolves them
against the dependency graph: assets referenced by a single bundle follow it,
assets referenced by several bundles are hoisted into shared_ bundles.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is asset-bundler.yaml in the project root or "+config.Dir()+")")
	pf.StringVarP(&a.root, "root", "r", ".", "project root; asset keys are relative to it")
	pf.StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newDeclareCmd(a),
		newPatchCmd(a),
		newRecordCmd(a),
		newAnalyzeCmd(a),
		newBundlesCmd(a),
		newVersionCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Execute runs the CLI with ctx; cancelling ctx stops a running analysis.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	dir, err := filepath.Abs(a.root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	a.absDir = dir

	a.v = viper.New()
	if err := config.Init(a.v, a.cfgFile, dir); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if a.logLevel != "" {
		a.v.Set("logging.level", a.logLevel)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("config loaded", "file", used)
	}

	a.fs = fsys.OS(dir)
	a.namer = naming.New(cfg.NamerOptions())
	a.filter, err = assetpath.New(cfg.FilterOptions())
	if err != nil {
		return err
	}
	return nil
}

// abs returns a project-relative path as an absolute OS path.
func (a *app) abs(rel string) string {
	return filepath.Join(a.absDir, filepath.FromSlash(rel))
}
