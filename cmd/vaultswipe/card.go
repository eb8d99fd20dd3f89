package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func cardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards",
		Long: `Add, list, edit, and delete the credit cards whose purchases you track.

Cards can be referenced by ID or by name.`,
		Example: `  # Add a card due on the 15th
  vaultswipe card add "Cash Back" --due-day 15

  # Record the statement balance shown by your bank
  vaultswipe card balance "Cash Back" 1,204.33`,
	}

	cmd.AddCommand(addCardCmd(a))
	cmd.AddCommand(listCardsCmd(a))
	cmd.AddCommand(renameCardCmd(a))
	cmd.AddCommand(recolorCardCmd(a))
	cmd.AddCommand(dueDayCmd(a))
	cmd.AddCommand(cardBalanceCmd(a))
	cmd.AddCommand(deleteCardCmd(a))

	return cmd
}

func addCardCmd(a *app) *cobra.Command {
	var color, dueDay, balance string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a card",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := ledger.NewCard{
				Name:  strings.Join(args, " "),
				Color: color,
			}
			if cmd.Flags().Changed("due-day") {
				v, err := parseDueDayValue(dueDay)
				if err != nil {
					return err
				}
				in.DueDay = &v
			}
			if balance != "" {
				b, err := parseMoney(balance)
				if err != nil {
					return err
				}
				in.CurrentBalance = &b
			}

			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				card, err := sess.Engine.AddCard(in)
				if err != nil {
					return fmt.Errorf("failed to add card: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s), due the %s\n",
					cli.FormatSuccess("Added card"),
					cli.Swatch(card.Color),
					cli.BoldStyle.Render(card.Name),
					card.ID,
					ledger.OrdinalSuffix(card.DueDay))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", "", "Card color as #RRGGBB (random palette color if omitted)")
	cmd.Flags().StringVarP(&dueDay, "due-day", "d", "", "Day of month the bill is due (default from config)")
	cmd.Flags().StringVarP(&balance, "balance", "b", "", "Current statement balance")

	return cmd
}

func listCardsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards with pending totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(_ context.Context, sess *session.Session) error {
				summary := sess.Engine.Summary(sess.Engine.Today())
				out := cmd.OutOrStdout()
				if len(summary.Cards) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No cards yet. Add one with `vaultswipe card add`."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("ID"),
					cli.TableHeaderStyle.Render("NAME"),
					cli.TableHeaderStyle.Render("PENDING"),
					cli.TableHeaderStyle.Render("BALANCE"),
					cli.TableHeaderStyle.Render("DUE"),
				}, "\t"))
				for _, cs := range summary.Cards {
					stated := "-"
					if cs.Card.HasCurrentBalance() {
						stated = cli.FormatMoney(*cs.Card.CurrentBalance)
					}
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
						cs.Card.ID,
						cli.Swatch(cs.Card.Color),
						cs.Card.Name,
						cli.FormatMoney(cs.Pending),
						stated,
						cli.FormatDue(cs))
				}
				return w.Flush()
			})
		},
	}
}

func renameCardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <card> <new name>",
		Short: "Rename a card",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				updated, err := sess.Engine.RenameCard(card.ID, strings.Join(args[1:], " "))
				if err != nil {
					return fmt.Errorf("failed to rename card: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %s to %s", card.Name, updated.Name)))
				return nil
			})
		},
	}
}

func recolorCardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recolor <card> [#RRGGBB]",
		Short: "Change a card's color",
		Long:  `Change a card's color. Without a color, a new one is picked from the palette.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := ""
			if len(args) == 2 {
				color = args[1]
			}
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				updated, err := sess.Engine.RecolorCard(card.ID, color)
				if err != nil {
					return fmt.Errorf("failed to recolor card: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					cli.FormatSuccess("Recolored "+updated.Name), cli.Swatch(updated.Color), updated.Color)
				return nil
			})
		},
	}
}

func dueDayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "due <card> <day>",
		Short: "Set the day of month a card is due",
		Long: `Set the day of month a card's bill is due. The day is rounded and
clamped to 1-31; in short months the last day of the month is used.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				updated, err := sess.Engine.ChangeDueDayText(card.ID, args[1])
				if err != nil {
					return fmt.Errorf("failed to change due day: %w", err)
				}
				today := sess.Engine.Today()
				days, err := sess.Engine.DaysUntilDue(updated.ID, today)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now due the %s (next %s, %s)",
					updated.Name,
					ledger.OrdinalSuffix(updated.DueDay),
					cli.FormatDate(ledger.NextDueDate(updated.DueDay, today)),
					cli.FormatDays(days))))
				return nil
			})
		},
	}
}

func cardBalanceCmd(a *app) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "balance <card> [amount]",
		Short: "Show or set a card's stated balance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance *decimal.Decimal
			if len(args) == 2 {
				b, err := parseMoney(args[1])
				if err != nil {
					return err
				}
				balance = &b
			}
			save := balance != nil || clear

			return a.withSession(cmd, save, func(_ context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !save {
					if !card.HasCurrentBalance() {
						fmt.Fprintf(out, "%s has no stated balance\n", card.Name)
						return nil
					}
					fmt.Fprintf(out, "%s: %s\n", card.Name, cli.FormatMoney(*card.CurrentBalance))
					return nil
				}

				updated, err := sess.Engine.SetCardCurrentBalance(card.ID, balance)
				if err != nil {
					return fmt.Errorf("failed to set balance: %w", err)
				}
				if updated.HasCurrentBalance() {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s balance set to %s", updated.Name, cli.FormatMoney(*updated.CurrentBalance))))
				} else {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Cleared the stated balance of %s", updated.Name)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the stated balance")
	return cmd
}

func deleteCardCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <card>",
		Short: "Delete a card and all of its purchases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, true, func(ctx context.Context, sess *session.Session) error {
				card, err := resolveCard(sess.Engine, args[0])
				if err != nil {
					return err
				}
				count := len(sess.Engine.State().TransactionsForCard(card.ID))

				if !yes {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %s and its %d purchase(s)?", card.Name, count))
					if err != nil {
						return err
					}
					if !ok {
						return errAborted
					}
				}

				removed, err := sess.DeleteCard(ctx, card.ID)
				if err != nil {
					return fmt.Errorf("failed to delete card: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s and %d purchase(s)", card.Name, removed)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
