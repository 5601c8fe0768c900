package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *App) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse release reports interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.IsInteractive() {
				return errors.New("browse needs an interactive terminal; use report --release instead")
			}
			ctx := cmd.Context()
			defer a.quietLogs()()
			m := newBrowseModel(ctx, a, flags.request(cmd.Flags(), a.Config, ""))
			defer m.session.Close()

			_, err := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
