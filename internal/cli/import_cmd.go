package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/reqreport/internal/cli/formatter"
)

func newImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load a Rally JSON export into the local workspace",
		Long: `Validate a Rally JSON export and load it into the local workspace.

The import replaces the previous workspace contents in one transaction;
a failed import leaves them untouched.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationWorkspace: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Import.ImportWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %s, %s, %s\n",
				formatter.StyleGreen.Render("Imported"),
				formatter.Bold(res.Workspace),
				formatter.Plural(res.ProjectCount, "project"),
				formatter.Plural(res.ReleaseCount, "release"),
				formatter.Plural(res.ItemCount, "item"),
			)
			fmt.Fprintln(out, formatter.Dim("run "+res.RunID+" into "+a.Config.DBPath))
			if w := formatter.FormatWarnings(res.Warnings); w != "" {
				fmt.Fprint(out, w)
			}
			return nil
		},
	}
}
