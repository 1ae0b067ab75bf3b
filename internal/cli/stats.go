package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oselabs/agentsight/internal/adapters/otel"
	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/analytics"
	"github.com/oselabs/agentsight/internal/cache"
	"github.com/oselabs/agentsight/internal/config"
	"github.com/oselabs/agentsight/internal/logging"
	"github.com/oselabs/agentsight/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overview metrics for a tenant",
	Long: `Print the overview metrics for a tenant over a query period.

Examples:
  agentsight stats --org acme               # Last 7 days
  agentsight stats --org acme --period 30d  # Last 30 days`,
	RunE: runStats,
}

var (
	statsOrg    string
	statsPeriod string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsOrg, "org", "o", "", "Tenant identifier (required)")
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "7d", "Query period: 1d, 7d, 30d, 90d")
	_ = statsCmd.MarkFlagRequired("org")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := logging.New("error")

	period := analytics.Period(statsPeriod)
	if !period.Valid() {
		return fmt.Errorf("invalid period %q, expected one of 1d, 7d, 30d, 90d", statsPeriod)
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

	svc := analytics.NewService(turso.NewEventStore(db), cache.New(), logger, otel.NewNoOpExporter(), time.Duration(cfg.CacheTTLSeconds)*time.Second)
	overview, err := svc.ComputeOverview(ctx, statsOrg, period, true)
	if err != nil {
		return fmt.Errorf("failed to compute overview: %w", err)
	}

	m := overview.Metrics
	fmt.Printf("Overview for %s (%s)\n\n", statsOrg, period)
	printMetric("Active users", util.FormatCount(m.ActiveUsers.Value), m.ActiveUsers)
	printMetric("Total sessions", util.FormatCount(m.TotalSessions.Value), m.TotalSessions)
	printMetric("Success rate", fmt.Sprintf("%.2f%%", m.SuccessRate.Value), m.SuccessRate)
	printMetric("Total cost", util.FormatCost(m.TotalCost.Value), m.TotalCost)
	printMetric("Avg session duration", util.FormatDurationSeconds(m.AvgSessionDuration.Value), m.AvgSessionDuration)
	printMetric("Errors", util.FormatCount(m.ErrorCount.Value), m.ErrorCount)
	return nil
}

func printMetric(label, value string, m analytics.MetricValue) {
	line := fmt.Sprintf("  %-22s %s", label+":", value)
	if m.ChangePercent != nil && m.Trend != nil {
		line += fmt.Sprintf("  (%+.2f%%, %s)", *m.ChangePercent, *m.Trend)
	}
	fmt.Println(line)
}
