package ports

import "context"

// MetricsExporter publishes the engine's own operational metrics. A no-op
// implementation is used when no collector endpoint is configured.
type MetricsExporter interface {
	RecordIngest(ctx context.Context, orgID string, accepted, rejected int)
	RecordCacheLookup(ctx context.Context, query string, hit bool)
	Close(ctx context.Context) error
}
