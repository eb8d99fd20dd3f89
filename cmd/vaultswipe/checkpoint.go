package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/spf13/cobra"
)

func checkpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage ledger checkpoints",
		Long: `Create, list, restore, and delete ledger checkpoints.

Checkpoints save a copy of the ledger before risky changes so it can be
restored later. Deleting a card, importing a ledger, and restoring a
checkpoint create one automatically. Checkpoints need the sqlite backend.`,
		Example: `  # Create a checkpoint before cleaning up cards
  vaultswipe checkpoint create --tag before-cleanup

  # List all checkpoints
  vaultswipe checkpoint list

  # Restore from a checkpoint
  vaultswipe checkpoint restore before-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd(a))
	cmd.AddCommand(listCheckpointsCmd(a))
	cmd.AddCommand(restoreCheckpointCmd(a))
	cmd.AddCommand(deleteCheckpointCmd(a))

	return cmd
}

// checkpointError explains the backend requirement to the user.
func checkpointError(err error) error {
	if errors.Is(err, session.ErrCheckpointsUnsupported) {
		return common.NewUserError("checkpoints need storage.backend: sqlite", err)
	}
	return err
}

func createCheckpointCmd(a *app) *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Long:  `Save a copy of the current ledger.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(ctx context.Context, sess *session.Session) error {
				cp, err := sess.Checkpoint(ctx, tag, description)
				if err != nil {
					return checkpointError(fmt.Errorf("failed to create checkpoint: %w", err))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(cp.ID),
					formatFileSize(int64(cp.Size)))
				if cp.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", cp.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag/name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, false, func(ctx context.Context, sess *session.Session) error {
				checkpoints, err := sess.ListCheckpoints(ctx)
				if err != nil {
					return checkpointError(fmt.Errorf("failed to list checkpoints: %w", err))
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No checkpoints found."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("NAME"),
					cli.TableHeaderStyle.Render("CREATED"),
					cli.TableHeaderStyle.Render("SIZE"),
					cli.TableHeaderStyle.Render("TYPE"),
					cli.TableHeaderStyle.Render("DESCRIPTION"),
				}, "\t"))
				for _, cp := range checkpoints {
					typeLabel := "manual"
					if cp.IsAuto {
						typeLabel = "auto"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						cli.InfoStyle.Render(cp.ID),
						formatRelativeTime(cp.CreatedAt),
						formatFileSize(int64(cp.Size)),
						cli.SubtleStyle.Render(typeLabel),
						cp.Description)
				}
				return w.Flush()
			})
		},
	}
}

func restoreCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the ledger from a checkpoint",
		Long:  `Replace the current ledger with a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(cmd, true, func(ctx context.Context, sess *session.Session) error {
				if !force {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Replace the current ledger with checkpoint %s?", id))
					if err != nil {
						return err
					}
					if !ok {
						return errAborted
					}
				}

				report, err := sess.Restore(ctx, id)
				if err != nil {
					return checkpointError(fmt.Errorf("failed to restore checkpoint: %w", err))
				}
				for _, w := range report.Warnings {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(w))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Restored from checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func deleteCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Long:  `Permanently remove a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(cmd, false, func(ctx context.Context, sess *session.Session) error {
				if !force {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Permanently delete checkpoint %s?", id))
					if err != nil {
						return err
					}
					if !ok {
						return errAborted
					}
				}

				if err := sess.DeleteCheckpoint(ctx, id); err != nil {
					return checkpointError(fmt.Errorf("failed to delete checkpoint: %w", err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if minutes := int(duration.Minutes()); minutes != 1 {
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if hours := int(duration.Hours()); hours != 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if days := int(duration.Hours() / 24); days != 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}
