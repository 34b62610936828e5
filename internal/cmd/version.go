package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"asset-bundler/internal/meta"
)

func newVersionCmd(a *app) *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:       "version [bump]",
		Short:     "Show or change the plan version",
		Long:      "Show the plan version (major.minor.build). \"bump\" increments the build number; --set changes major.minor.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bump"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, rec, err := a.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			changed := false
			if set != "" {
				var major, minor int
				if _, err := fmt.Sscanf(set, "%d.%d", &major, &minor); err != nil || major < 0 || minor < 0 {
					return fmt.Errorf("--set wants major.minor, got %q", set)
				}
				reg.SetVersion(major, minor)
				changed = true
			}
			if len(args) == 1 {
				reg.BumpBuild()
				changed = true
			}
			if changed {
				if err := a.save(reg, rec, nil); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, reg.Version())
			a.log.Debug("tool", "version", meta.ToolVersion(), "project", meta.Detect(a.fs.Fs()).String())
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "set major.minor, keeping the build number")
	return cmd
}
