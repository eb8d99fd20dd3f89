package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/spf13/cobra"
)

func txnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction", "purchase"},
		Short:   "Record and clear card purchases",
		Long: `Record card purchases and mark them cleared once their amount has been
moved out of checking.`,
		Example: `  # Record a purchase made today
  vaultswipe txn add "Cash Back" 12.57 Starbucks

  # Move a purchase's amount into the vault and clear it
  vaultswipe txn vault t_4f1c...

  # Import a statement download
  vaultswipe txn import-ofx "Cash Back" statement.qfx`,
	}

	cmd.AddCommand(addTxnCmd(a))
	cmd.AddCommand(listTxnCmd(a))
	cmd.AddCommand(clearTxnCmd(a))
	cmd.AddCommand(noteTxnCmd(a))
	cmd.AddCommand(vaultTxnCmd(a))
	cmd.AddCommand(importOFXCmd(a))
	cmd.AddCommand(importCSVCmd(a))

	return cmd
}

func addTxnCmd(a *app) *cobra.Command {
	var date, note string

	cmd := &cobra.Command{
		Use:   "add <card> <amount> <merchant>",
		Short: "Record a purchase",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(args[1])
			if err != nil {
				return err
			}
			when, err := parseDateFlag(date, civil.Date{})
			if err != nil {
				return err
			}

			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				txn, err := sess.Engine.AddTransaction(ledger.NewTransaction{
					CardID:   card.ID,
					Amount:   amount,
					Merchant: strings.Join(args[2:], " "),
					Date:     when,
					Note:     note,
				})
				if err != nil {
					return fmt.Errorf("failed to add purchase: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s on %s (%s)\n",
					cli.FormatSuccess("Recorded"),
					cli.FormatMoney(txn.Amount),
					txn.Merchant,
					card.Name,
					txn.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Purchase date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Free-form note")

	return cmd
}

func listTxnCmd(a *app) *cobra.Command {
	var pendingOnly, clearedOnly bool

	cmd := &cobra.Command{
		Use:   "list [card]",
		Short: "List purchases, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, false, func(_ context.Context, sess *session.Session) error {
				state := sess.Engine.State()
				cards := state.Cards
				if len(args) == 1 {
					card, err := resolveCard(sess.Engine, args[0])
					if err != nil {
						return err
					}
					cards = []model.Card{card}
				}

				out := cmd.OutOrStdout()
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("ID"),
					cli.TableHeaderStyle.Render("DATE"),
					cli.TableHeaderStyle.Render("CARD"),
					cli.TableHeaderStyle.Render("MERCHANT"),
					cli.TableHeaderStyle.Render("AMOUNT"),
					cli.TableHeaderStyle.Render("STATUS"),
					cli.TableHeaderStyle.Render("NOTE"),
				}, "\t"))

				rows := 0
				for _, card := range cards {
					var txns []model.Transaction
					if !clearedOnly {
						txns = append(txns, ledger.PendingTransactions(state.Transactions, card.ID)...)
					}
					if !pendingOnly {
						txns = append(txns, ledger.ClearedTransactions(state.Transactions, card.ID)...)
					}
					for _, t := range txns {
						status := cli.WarningStyle.Render("pending")
						if t.Cleared {
							status = cli.SuccessStyle.Render("cleared")
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
							t.ID, t.Date, card.Name, t.Merchant, cli.FormatMoney(t.Amount), status, t.Note)
						rows++
					}
				}

				if rows == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No purchases found."))
					return nil
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show pending purchases")
	cmd.Flags().BoolVar(&clearedOnly, "cleared", false, "Only show cleared purchases")
	cmd.MarkFlagsMutuallyExclusive("pending", "cleared")

	return cmd
}

func clearTxnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Toggle a purchase between pending and cleared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				txn, err := sess.Engine.ToggleCleared(args[0])
				if err != nil {
					return fmt.Errorf("failed to toggle purchase: %w", err)
				}
				state := "pending"
				if txn.Cleared {
					state = "cleared"
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s %s is now %s",
					txn.Merchant, cli.FormatMoney(txn.Amount), state)))
				return nil
			})
		},
	}
}

func noteTxnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> [note]",
		Short: "Set or remove a purchase note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				txn, err := sess.Engine.UpdateNote(args[0], strings.Join(args[1:], " "))
				if err != nil {
					return fmt.Errorf("failed to update note: %w", err)
				}
				if txn.Note == "" {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed note from "+txn.Merchant))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Noted %s: %s", txn.Merchant, txn.Note)))
				return nil
			})
		},
	}
}

func vaultTxnCmd(a *app) *cobra.Command {
	var keepPending bool

	cmd := &cobra.Command{
		Use:   "vault <id>",
		Short: "Move a purchase's amount into the vault and clear it",
		Long: `Move a purchase's amount from checking into the vault. The purchase is
marked cleared unless --keep-pending is given. The move is not limited by
the checking balance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				txn, balances, err := sess.Engine.VaultTransaction(args[0], !keepPending)
				if err != nil {
					return fmt.Errorf("failed to vault purchase: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Moved %s for %s into the vault",
					cli.FormatMoney(txn.Amount), txn.Merchant)))
				printBalances(out, balances)
				if balances.Checking.IsNegative() {
					fmt.Fprintln(out, cli.FormatWarning("Checking is now negative"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&keepPending, "keep-pending", false, "Leave the purchase pending")
	return cmd
}
