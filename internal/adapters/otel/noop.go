package otel

import "context"

// NoOpExporter is used when no collector endpoint is configured.
type NoOpExporter struct{}

func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordIngest(ctx context.Context, orgID string, accepted, rejected int) {}

func (e *NoOpExporter) RecordCacheLookup(ctx context.Context, query string, hit bool) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
