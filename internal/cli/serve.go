package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oselabs/agentsight/internal/adapters/memory"
	otelexp "github.com/oselabs/agentsight/internal/adapters/otel"
	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/analytics"
	"github.com/oselabs/agentsight/internal/cache"
	"github.com/oselabs/agentsight/internal/config"
	"github.com/oselabs/agentsight/internal/ingest"
	"github.com/oselabs/agentsight/internal/logging"
	"github.com/oselabs/agentsight/internal/ports"
	"github.com/oselabs/agentsight/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the ingestion and analytics HTTP API.

The backing store is selected at startup: when AGENTSIGHT_TURSO_DATABASE_URL
is set the server persists events to Turso, otherwise it keeps them in
memory.

Examples:
  agentsight serve                  # Listen on :8080
  agentsight serve --addr :3000    # Listen on :3000`,
	RunE: runServe,
}

var (
	serveAddr     string
	serveLogLevel string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides AGENTSIGHT_LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(serveLogLevel)

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	store, closeStore, err := newEventStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	exporter, err := newExporter(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics exporter: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := exporter.Close(closeCtx); err != nil {
			logger.Error("exporter shutdown error", "error", err)
		}
	}()

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	ing := ingest.NewService(store, logger, exporter, cfg.MaxBatchSize)
	an := analytics.NewService(store, cache.New(), logger, exporter, ttl)

	server := web.NewServer(cfg.ListenAddr, ing, an, logger, cfg.DefaultPageSize, cfg.MaxPageSize)
	return server.Start(ctx)
}

// newEventStore selects the backing store from configuration. The returned
// closer is a no-op for the in-memory store.
func newEventStore(cfg *config.Server, logger ports.Logger) (ports.EventStore, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info("using in-memory event store")
		return memory.NewStore(), func() {}, nil
	}

	db, err := turso.NewDB(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("using turso event store")
	return turso.NewEventStore(db), func() { _ = db.Close() }, nil
}

func newExporter(ctx context.Context, logger ports.Logger) (ports.MetricsExporter, error) {
	otelCfg := otelexp.LoadConfig()
	if !otelCfg.Enabled {
		return otelexp.NewNoOpExporter(), nil
	}
	logger.Info("otel metrics enabled", "endpoint", otelCfg.Endpoint)
	return otelexp.NewExporter(ctx, otelCfg)
}
