package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/spf13/cobra"
)

func balanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show or set the checking and vault balances",
		Long: `Show or set the two manually maintained balances: checking, where
purchases are paid from, and the vault, where money for card bills is kept.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show both balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(_ context.Context, sess *session.Session) error {
				printBalances(cmd.OutOrStdout(), sess.Engine.State().Balances)
				return nil
			})
		},
	})
	cmd.AddCommand(setBalanceCmd(a, model.AccountChecking))
	cmd.AddCommand(setBalanceCmd(a, model.AccountVault))

	return cmd
}

func setBalanceCmd(a *app, account model.Account) *cobra.Command {
	return &cobra.Command{
		Use:   string(account) + " <amount>",
		Short: fmt.Sprintf("Set the %s balance", account),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				var balances model.Balances
				if account == model.AccountVault {
					balances = sess.Engine.SetVaultBalance(amount)
				} else {
					balances = sess.Engine.SetCheckingBalance(amount)
				}
				printBalances(cmd.OutOrStdout(), balances)
				return nil
			})
		},
	}
}

func transferCmd(a *app) *cobra.Command {
	var to string
	var unchecked bool

	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "Move money between checking and the vault",
		Long: `Move money between checking and the vault. By default the transfer is
rejected when the source account does not hold enough money; --unchecked
applies it anyway and lets the source go negative.`,
		Example: `  # Park $200 in the vault
  vaultswipe transfer 200

  # Pull money back to checking
  vaultswipe transfer 50 --to checking`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			dir, err := model.ParseTransferDirection(to)
			if err != nil {
				return err
			}

			return a.withSession(cmd, true, func(_ context.Context, sess *session.Session) error {
				var balances model.Balances
				if unchecked {
					balances, err = sess.Engine.TransferUnchecked(dir, amount)
				} else {
					balances, err = sess.Engine.Transfer(dir, amount)
				}
				if err != nil {
					return fmt.Errorf("transfer rejected: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Moved %s from %s to %s",
					cli.FormatMoney(amount.Round(2)), dir.Source(), dir.Destination())))
				printBalances(out, balances)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "vault", "Destination account (vault or checking)")
	cmd.Flags().BoolVar(&unchecked, "unchecked", false, "Allow the source balance to go negative")

	return cmd
}

func printBalances(w io.Writer, b model.Balances) {
	fmt.Fprintf(w, "  Checking: %s\n", moneyStyle(b.Checking.IsNegative()).Render(cli.FormatMoney(b.Checking)))
	fmt.Fprintf(w, "  %s Vault: %s\n", cli.VaultIcon, moneyStyle(b.Vault.IsNegative()).Render(cli.FormatMoney(b.Vault)))
}
