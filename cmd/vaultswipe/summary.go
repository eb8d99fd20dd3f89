package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func moneyStyle(negative bool) lipgloss.Style {
	if negative {
		return cli.ErrorStyle
	}
	return cli.BoldStyle
}

func summaryCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show what is owed, what is vaulted, and what is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(_ context.Context, sess *session.Session) error {
				today, err := parseDateFlag(date, sess.Engine.Today())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSummary(sess.Engine.Summary(today)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Compute due dates as of YYYY-MM-DD (default today)")
	return cmd
}

func renderSummary(s ledger.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Checking:        %s\n", moneyStyle(s.Checking.IsNegative()).Render(cli.FormatMoney(s.Checking)))
	fmt.Fprintf(&b, "Vault:           %s\n", moneyStyle(s.Vault.IsNegative()).Render(cli.FormatMoney(s.Vault)))
	fmt.Fprintf(&b, "Pending:         %s\n", cli.BoldStyle.Render(cli.FormatMoney(s.TotalPending)))
	fmt.Fprintf(&b, "Card exposure:   %s (%s)\n", cli.BoldStyle.Render(cli.FormatMoney(s.TotalCardBalances)), s.Mode)
	fmt.Fprintf(&b, "Still to vault:  %s\n", cli.BoldStyle.Render(cli.FormatMoney(s.Difference)))
	fmt.Fprintf(&b, "Vault coverage:  %.0f%%\n", s.VaultCoverage*100)

	var cards strings.Builder
	if len(s.Cards) == 0 {
		cards.WriteString(cli.SubtleStyle.Render("No cards yet."))
	}
	for i, cs := range s.Cards {
		if i > 0 {
			cards.WriteString("\n")
		}
		fmt.Fprintf(&cards, "%s %s  %s pending (%d)  %s",
			cli.Swatch(cs.Card.Color),
			cli.BoldStyle.Render(cs.Card.Name),
			cli.FormatMoney(cs.Pending),
			cs.PendingCount,
			cli.FormatDue(cs))
	}

	out := cli.RenderBox(fmt.Sprintf("%s Ledger on %s", cli.VaultIcon, cli.FormatDate(s.Date)), b.String()) + "\n" +
		cli.RenderBox(cli.CardIcon+" Cards", cards.String()) + "\n"

	if s.ShowReminder {
		out += cli.FormatWarning(fmt.Sprintf("Move %s into the vault to cover pending purchases.", cli.FormatMoney(s.Difference))) + "\n"
	}
	return out
}

func dueCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "due <day>",
		Short: "Show the next due date for a day of month",
		Long: `Show when a bill due on the given day of month is next due, and how
many days away that is. Days past the end of a month fall on its last day.`,
		Example: `  vaultswipe due 31 --date 2025-02-15`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := parseDateFlag(date, civil.DateOf(time.Now()))
			if err != nil {
				return err
			}
			day, err := parseDueDayArg(args[0])
			if err != nil {
				return err
			}
			days := ledger.DaysUntilNextDue(day, today)
			fmt.Fprintf(cmd.OutOrStdout(), "The %s is next due %s (%s)\n",
				ledger.OrdinalSuffix(day),
				cli.FormatDate(ledger.NextDueDate(day, today)),
				cli.FormatDays(days))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Count from YYYY-MM-DD (default today)")
	return cmd
}
