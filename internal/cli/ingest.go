package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oselabs/agentsight/internal/adapters/otel"
	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/config"
	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/ingest"
	"github.com/oselabs/agentsight/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest events from a JSON file",
	Long: `Read a JSON array of events from a file and store them for a tenant.

Duplicate events are skipped and reported, matching the HTTP ingest
endpoint.

Examples:
  agentsight ingest --org acme events.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var ingestOrg string

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestOrg, "org", "o", "", "Tenant identifier (required)")
	_ = ingestCmd.MarkFlagRequired("org")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := logging.New("info")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

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

	svc := ingest.NewService(turso.NewEventStore(db), logger, otel.NewNoOpExporter(), cfg.MaxBatchSize)
	res, err := svc.Ingest(ctx, ingestOrg, events)
	if err != nil {
		return err
	}

	fmt.Printf("Accepted: %d\nRejected: %d\n", res.Accepted, res.Rejected)
	for _, e := range res.Errors {
		fmt.Printf("  [%d] %s: %s (%s)\n", e.Index, e.EventID, e.Message, e.Code)
	}
	return nil
}
