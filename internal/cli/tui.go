// internal/cli/tui.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Corphon/NovelForge/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive manuscript editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			runErr := tui.Run(cmd.Context(), ed, tui.Options{
				AutosaveDelay: app.cfg.AutosaveDelay,
				Logger:        app.logger,
				AltScreen:     !inline,
			})
			// The selection survives even when the last save failed.
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			if runErr != nil {
				return writeErr(cmd, runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "Render inline instead of full screen")
	return cmd
}
