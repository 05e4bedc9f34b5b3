package cmd

import (
	"context"
	"fmt"
	"strconv"

	"armory-sync/core/armory"
	"armory-sync/core/config"
	"armory-sync/core/database"
	"armory-sync/core/logger"
	"armory-sync/feature/roster"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconcileCmd performs a one-shot reconciliation run for a single user.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <user-id>",
	Short: "Reconcile one user's characters and guilds with the armory",
	Long: `Run a single reconciliation for the given user: fetch the remote
roster, discover guild membership, upsert guilds and characters, and remove
characters the user no longer owns.

Examples:
  # Reconcile user 42
  armory-sync reconcile 42`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	userID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[0], err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	client, err := armory.NewClient(cfg.Armory)
	if err != nil {
		return fmt.Errorf("failed to create armory client: %w", err)
	}

	svc := roster.NewService(roster.NewStore(db), client, nil, logg)

	result, err := svc.Reconcile(ctx, uint(userID))
	if err != nil {
		return err
	}

	logg.Info("Reconciliation finished",
		zap.String("battle_tag", result.BattleTag),
		zap.Int("characters", result.Characters))

	return nil
}
