// Package otel exports the engine's operational metrics to an OpenTelemetry
// collector over OTLP gRPC.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "agentsight"
	serviceVersion = "1.0.0"
)

// Exporter implements ports.MetricsExporter against an OTLP collector.
type Exporter struct {
	provider       *sdkmetric.MeterProvider
	meter          metric.Meter
	eventsAccepted metric.Int64Counter
	eventsRejected metric.Int64Counter
	cacheLookups   metric.Int64Counter
}

// NewExporter connects to the collector configured in cfg.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	eventsAccepted, err := meter.Int64Counter(
		"agentsight_events_accepted_total",
		metric.WithDescription("Events accepted by ingestion"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating accepted counter: %w", err)
	}

	eventsRejected, err := meter.Int64Counter(
		"agentsight_events_rejected_total",
		metric.WithDescription("Events rejected by ingestion"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	cacheLookups, err := meter.Int64Counter(
		"agentsight_cache_lookups_total",
		metric.WithDescription("Aggregate-query cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache counter: %w", err)
	}

	return &Exporter{
		provider:       provider,
		meter:          meter,
		eventsAccepted: eventsAccepted,
		eventsRejected: eventsRejected,
		cacheLookups:   cacheLookups,
	}, nil
}

func (e *Exporter) RecordIngest(ctx context.Context, orgID string, accepted, rejected int) {
	opt := metric.WithAttributes(attribute.String("org_id", orgID))
	e.eventsAccepted.Add(ctx, int64(accepted), opt)
	e.eventsRejected.Add(ctx, int64(rejected), opt)
}

func (e *Exporter) RecordCacheLookup(ctx context.Context, query string, hit bool) {
	e.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query", query),
		attribute.Bool("hit", hit),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
