package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/database"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// adminOptions holds the flag values shared by the subcommands
type adminOptions struct {
	userID string
	email  string
	dryRun bool
	yes    bool
}

func newRootCmd() *cobra.Command {
	var opts adminOptions

	rootCmd := &cobra.Command{
		Use:   "fictiondb-admin",
		Short: "Maintenance commands for the fictiondb data service",
		Long: `Maintenance commands that run directly against the configured database.

Connection settings come from the same environment variables (and .env file) as the server.

Examples:
  # Report tag usage drift for every user without changing anything
  fictiondb-admin repair --dry-run

  # Recompute usage counts and prune link records for one user
  fictiondb-admin repair --user 0b8f...

  # Remove rows whose owning user no longer exists
  fictiondb-admin prune-orphans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Prune link records and recompute tag usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				if opts.userID != "" {
					report, err := services.RepairUser(ctx, db, opts.userID, opts.dryRun)
					if err != nil {
						return err
					}
					return printJSON(cmd, report)
				}
				reports, err := services.RepairAll(ctx, db, opts.dryRun)
				if err != nil {
					return err
				}
				return printJSON(cmd, reports)
			})
		},
	}
	repairCmd.Flags().StringVarP(&opts.userID, "user", "u", "", "Limit to one user id")
	repairCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report without writing")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Report tags whose stored usage count differs from the link records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.userID == "" {
				return errors.New("--user is required")
			}
			return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				drift, err := services.AuditUsageCounts(ctx, db, opts.userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, drift)
			})
		},
	}
	auditCmd.Flags().StringVarP(&opts.userID, "user", "u", "", "User id (required)")

	pruneCmd := &cobra.Command{
		Use:   "prune-orphans",
		Short: "Delete link records, fictions, tags and fandoms whose user no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				counts, err := services.PurgeOrphanedRecords(ctx, db, opts.dryRun)
				if err != nil {
					return err
				}
				return printJSON(cmd, counts)
			})
		},
	}
	pruneCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Count without deleting")

	deleteUserCmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete a user and everything it owns without a password check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.userID == "") == (opts.email == "") {
				return errors.New("exactly one of --user or --email is required")
			}
			if !opts.yes {
				return errors.New("refusing to delete without --yes")
			}
			return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				id := opts.userID
				if opts.email != "" {
					user, err := services.FindUserByEmail(ctx, db, opts.email)
					if err != nil {
						return err
					}
					id = user.ID
				}
				deleted, err := services.PurgeUser(ctx, db, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, deleted)
			})
		},
	}
	deleteUserCmd.Flags().StringVarP(&opts.userID, "user", "u", "", "User id")
	deleteUserCmd.Flags().StringVarP(&opts.email, "email", "e", "", "User email")
	deleteUserCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Confirm the deletion")

	rootCmd.AddCommand(repairCmd, auditCmd, pruneCmd, deleteUserCmd)
	return rootCmd
}

// withDB loads configuration, opens the database and runs fn
func withDB(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(ctx, db)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
