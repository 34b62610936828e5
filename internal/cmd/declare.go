package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"asset-bundler/internal/naming"
	"asset-bundler/internal/validate"
)

func newDeclareCmd(a *app) *cobra.Command {
	var groupBy, group string
	cmd := &cobra.Command{
		Use:   "declare <paths...>",
		Short: "Declare how assets are grouped into bundles",
		Long: `Declare a grouping rule for every file under the given paths.

Strategies:
  explicit   bundle named by --group
  filename   one bundle per file
  directory  one bundle per containing directory
  none       never bundled on its own account

Declaring a scene makes it the current scene: later declarations are also
tagged into that scene's patch.`,
		Example: `  asset-bundler declare Assets/UI --group-by directory
  asset-bundler declare Assets/Fonts --group-by explicit --group fonts`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := naming.ParseStrategy(groupBy)
			if err != nil {
				return err
			}
			reg, rec, err := a.open()
			if err != nil {
				return err
			}
			keys, err := a.expand(args)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return errors.New("nothing to declare: no asset keys under the given paths")
			}
			decls, err := reg.DeclareAll(keys, s, group)
			if err != nil {
				return err
			}
			if err := validate.Declarations(reg.Declarations()); err != nil {
				return err
			}
			if err := a.save(reg, rec, nil); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "declared %d assets (%s)\n", len(decls), s)
			if scene := reg.CurrentScene(); scene != "" {
				fmt.Fprintf(out, "current scene: %s\n", scene)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "filename", "grouping strategy: explicit, filename, directory or none")
	cmd.Flags().StringVar(&group, "group", "", "bundle name for --group-by explicit")
	return cmd
}

func newPatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patch <paths...>",
		Short: "Tag assets into the current scene's patch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, rec, err := a.open()
			if err != nil {
				return err
			}
			if reg.CurrentScene() == "" {
				return errors.New("no current scene: declare a scene first")
			}
			keys, err := a.expand(args)
			if err != nil {
				return err
			}
			n := 0
			for _, k := range keys {
				if reg.PatchAsset(k) {
					n++
				}
			}
			if err := a.save(reg, rec, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "patched %d of %d assets into %s\n", n, len(keys), reg.CurrentScene())
			return nil
		},
	}
}

func newRecordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "record <paths...>",
		Short: "Record loaded assets with an automatic grouping rule",
		Long: `Record assets observed at load time. An asset whose directory matches
one of record.auto_group_by_directories is grouped by directory, any other
by file name. Requires record.auto_record.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Record.AutoRecord {
				return errors.New("auto-record is disabled (set record.auto_record)")
			}
			reg, rec, err := a.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range args {
				if _, known := reg.Lookup(key); known {
					continue
				}
				d, ok, err := reg.Record(key)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(out, "%s\t%s\n", d.Asset, d.Strategy)
				}
			}
			return a.save(reg, rec, nil)
		},
	}
}
