package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newBundlesCmd(a *app) *cobra.Command {
	var asJSON bool
	var asset string
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Show the last recorded bundle plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, rec, err := a.open()
			if err != nil {
				return err
			}
			p := rec.Plan()
			if p == nil {
				return errors.New("no plan recorded; run analyze first")
			}
			out := cmd.OutOrStdout()

			if asset != "" {
				b, ok := p.BundleOf(asset)
				if !ok {
					return fmt.Errorf("%s is not in any bundle", asset)
				}
				fmt.Fprintln(out, b)
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p.Bundles)
			}
			fmt.Fprintf(out, "plan %s (%s)\n", p.Version, rec.Fingerprint)
			for _, b := range p.Bundles {
				fmt.Fprintf(out, "%s (%d)\n", b.Name, len(b.Assets))
				for _, k := range b.Assets {
					fmt.Fprintf(out, "  %s\n", k)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the bundle list as JSON")
	cmd.Flags().StringVar(&asset, "asset", "", "print only the bundle that holds this asset")
	return cmd
}
