package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the ledger as JSON",
		Long:  `Write the ledger as a JSON document to a file, or to stdout without one.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, false, func(_ context.Context, sess *session.Session) error {
				data, err := sess.Export()
				if err != nil {
					return fmt.Errorf("failed to encode ledger: %w", err)
				}
				if len(args) == 0 {
					_, err := cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(args[0], data, 0o600); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported ledger to "+args[0]))
				return nil
			})
		},
	}
}

func importCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with an exported JSON document",
		Long: `Replace the whole ledger with a document written by export. Fields that
are missing or malformed fall back to defaults and are reported. A file
that is not a ledger at all is rejected and the current ledger is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			return a.withSession(cmd, true, func(ctx context.Context, sess *session.Session) error {
				out := cmd.OutOrStdout()
				if !yes && len(sess.Engine.State().Cards) > 0 {
					prompter := cli.NewPrompter(cmd.InOrStdin(), out)
					ok, err := prompter.Confirm(ctx, "Replace the current ledger?")
					if err != nil {
						return err
					}
					if !ok {
						return errAborted
					}
				}

				report, err := sess.Import(ctx, data)
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", args[0], err)
				}
				for _, w := range report.Warnings {
					fmt.Fprintln(out, cli.FormatWarning(w))
				}
				state := sess.Engine.State()
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d card(s) and %d purchase(s)",
					len(state.Cards), len(state.Transactions))))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample cards and purchases into an empty ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				state, err := sess.Engine.Seed()
				if errors.Is(err, ledger.ErrLedgerNotEmpty) {
					return common.NewUserError("the ledger already has cards, seed only fills an empty one", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Seeded %d card(s) and %d purchase(s)",
					len(state.Cards), len(state.Transactions))))
				return nil
			})
		},
	}
}
