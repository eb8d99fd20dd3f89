package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/Veraticus/vaultswipe/internal/tui"
	"github.com/Veraticus/vaultswipe/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd(a *app) *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open a full-screen dashboard of cards, pending purchases, and vault
coverage. Press ? inside the dashboard for key bindings. Quitting with q
saves; Ctrl+C discards unsaved changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(ctx context.Context, sess *session.Session) error {
				discarded, err := tui.Run(ctx, sess, tui.WithTheme(themes.ByName(theme)))
				if err != nil {
					return err
				}
				if discarded {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Unsaved changes were discarded."))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "Color theme (default, mono)")
	return cmd
}
