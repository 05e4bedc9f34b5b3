package cmd

import (
	"context"
	"fmt"

	"armory-sync/core/armory"
	"armory-sync/core/config"
	"armory-sync/core/database"
	"armory-sync/core/logger"
	"armory-sync/feature/refdata"

	"github.com/spf13/cobra"
)

var refdataToken string

// refdataCmd imports static reference data (classes, races, realms).
var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Import playable classes, races and realms from the armory",
	Long: `One-shot import of static reference data into the local store.
The static data endpoints require a service token; pass it with --token.

Examples:
  armory-sync refdata --token <service-token>`,
	RunE: runRefdata,
}

func init() {
	refdataCmd.Flags().StringVar(&refdataToken, "token", "", "Service token for the static data endpoints")
	_ = refdataCmd.MarkFlagRequired("token")

	RootCmd.AddCommand(refdataCmd)
}

func runRefdata(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	if err := db.AutoMigrate(&refdata.PlayableClass{}, &refdata.PlayableRace{}, &refdata.Realm{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	client, err := armory.NewClient(cfg.Armory)
	if err != nil {
		return fmt.Errorf("failed to create armory client: %w", err)
	}

	_, err = refdata.NewService(client, db, logg).Import(ctx, refdataToken)
	return err
}
