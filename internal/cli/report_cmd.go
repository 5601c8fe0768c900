package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/cli/formatter"
)

func newReportCmd(a *App) *cobra.Command {
	var (
		flags   reportFlags
		release string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the functional and non-functional requirements of a release",
		Long: `Print the requirements planned for a release.

An item is in a release when it, or any descendant leaf, is assigned to it.
Items whose descendants span several releases are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if release == "" {
				if !a.IsInteractive() {
					return &app.ReportError{Code: app.ReportErrInvalidRelease, Message: "--release is required"}
				}
				releases, err := a.Releases.ListReleases(ctx, flags.override(cmd.Flags(), a.Config))
				if err != nil {
					return err
				}
				if len(releases) == 0 {
					return errors.New("no releases found in scope")
				}
				if release, err = a.PickRelease(releases); err != nil {
					return err
				}
			}

			req := flags.request(cmd.Flags(), a.Config, release)

			stop := func() {}
			if a.IsInteractive() && !asJSON {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Loading release %s...", release))
			}
			resp, err := a.Reports.Generate(ctx, req)
			stop()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReport(resp, a.Width(), a.Now()))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&release, "release", "r", "", "Release name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report descriptors as JSON")
	return cmd
}
