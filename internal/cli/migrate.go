package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/config"
	"github.com/oselabs/agentsight/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply all pending schema migrations to the configured Turso database.

Examples:
  agentsight migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("AGENTSIGHT_TURSO_DATABASE_URL is not set")
	}

	db, err := turso.NewDB(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migrate.RunAll(ctx, db); err != nil {
		return err
	}

	version, _, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Schema at version %d\n", version)
	return nil
}
