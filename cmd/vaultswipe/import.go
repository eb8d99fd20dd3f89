package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/csvimport"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/ofx"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/spf13/cobra"
)

// rowParser turns one statement file into purchases.
type rowParser func(ctx context.Context, path string, data []byte) ([]ledger.NewTransaction, error)

func importOFXCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-ofx <card> <files...>",
		Short: "Import purchases from OFX/QFX statements",
		Long: `Import purchases from OFX or QFX (Quicken) files downloaded from your card
issuer. Debits become pending purchases on the given card; payments and
refunds are skipped. Purchases already recorded on the card with the same
date, merchant, and amount are not imported twice.`,
		Example: `  # Import a single statement
  vaultswipe txn import-ofx "Cash Back" ~/Downloads/cashback_jul.qfx

  # Import several statements at once
  vaultswipe txn import-ofx "Cash Back" ~/Downloads/cashback_*.qfx`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := ofx.NewParser()
			parse := func(ctx context.Context, path string, data []byte) ([]ledger.NewTransaction, error) {
				accounts, err := parser.GetAccounts(ctx, bytes.NewReader(data))
				if err != nil {
					return nil, err
				}
				if len(accounts) > 1 {
					slog.Warn("Statement covers several accounts, importing all of them",
						"file", filepath.Base(path), "accounts", accounts)
				}
				return parser.ParseFile(ctx, bytes.NewReader(data))
			}
			return a.runImport(cmd, args[0], args[1:], parse, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview import without saving")
	return cmd
}

func importCSVCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-csv <card> <files...>",
		Short: "Import purchases from CSV files",
		Long: `Import purchases from CSV files with a header row naming the columns
date, merchant, and amount, plus an optional note column.`,
		Example: `  vaultswipe txn import-csv "Cash Back" purchases.csv`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parse := func(_ context.Context, _ string, data []byte) ([]ledger.NewTransaction, error) {
				return csvimport.Read(bytes.NewReader(data))
			}
			return a.runImport(cmd, args[0], args[1:], parse, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview import without saving")
	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

func (a *app) runImport(cmd *cobra.Command, cardRef string, patterns []string, parse rowParser, dryRun bool) error {
	files, err := expandFiles(patterns)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	defer handler.Stop()

	return a.withSession(cmd, !dryRun, func(ctx context.Context, sess *session.Session) error {
		card, err := resolveCard(sess.Engine, cardRef)
		if err != nil {
			return err
		}

		ctx = handler.Watch(ctx, "Nothing was imported.")
		out := cmd.OutOrStdout()
		bar := cli.NewImportProgress(cmd.ErrOrStderr(), len(files), "Reading statements")

		var rows []ledger.NewTransaction
		failed := 0
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("import interrupted: %w", err)
			}

			parsed, err := readStatement(ctx, path, parse)
			if err != nil {
				failed++
				common.LogError(err, "Failed to read statement", common.Fields{"file": path})
			} else {
				slog.Info("Processed file", "file", filepath.Base(path), "purchases", len(parsed))
				rows = append(rows, parsed...)
			}
			if err := bar.Add(1); err != nil {
				slog.Debug("Failed to update progress bar", "error", err)
			}
		}

		if failed == len(files) {
			return fmt.Errorf("none of the %d file(s) could be read", failed)
		}

		result, err := sess.Engine.ImportTransactions(card.ID, rows)
		if err != nil {
			return fmt.Errorf("failed to import purchases: %w", err)
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %d purchase(s) to %s", verb, len(result.Added), card.Name)))
		if result.Duplicates > 0 {
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d duplicate(s)", result.Duplicates)))
		}
		if failed > 0 {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d file(s) could not be read", failed)))
		}
		if dryRun {
			fmt.Fprintln(out, cli.SubtleStyle.Render("Dry run: nothing was saved."))
		}
		return nil
	})
}

func readStatement(ctx context.Context, path string, parse rowParser) ([]ledger.NewTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parse(ctx, path, data)
}
