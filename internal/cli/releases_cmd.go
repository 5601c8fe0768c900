package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/reqreport/internal/cli/formatter"
)

func newReleasesCmd(a *App) *cobra.Command {
	var (
		flags  scopeFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List releases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			releases, err := a.Releases.ListReleases(cmd.Context(), flags.override(cmd.Flags(), a.Config))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(releases)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReleases(releases))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print releases as JSON")
	return cmd
}
