// Package ingest accepts event batches at the system boundary: it enforces
// the batch ceiling, fills defaults, and delegates idempotent storage to the
// configured event store.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/ports"
)

// DefaultMaxBatchSize caps a single ingestion call. Larger batches are
// rejected whole before any item is stored.
const DefaultMaxBatchSize = 1000

// BatchTooLargeError reports a batch over the configured ceiling.
type BatchTooLargeError struct {
	Size int
	Max  int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d events exceeds the maximum of %d", e.Size, e.Max)
}

type Service struct {
	store    ports.EventStore
	logger   ports.Logger
	exporter ports.MetricsExporter
	maxBatch int
	now      func() time.Time
}

func NewService(store ports.EventStore, logger ports.Logger, exporter ports.MetricsExporter, maxBatch int) *Service {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &Service{
		store:    store,
		logger:   logger,
		exporter: exporter,
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// Ingest stores a tenant's batch. Missing event IDs are assigned fresh UUIDs
// and zero timestamps default to the current instant; everything else is
// stored exactly as submitted. Duplicates and per-item storage failures are
// reported in the result without failing the batch.
func (s *Service) Ingest(ctx context.Context, orgID string, events []domain.Event) (domain.IngestResult, error) {
	if len(events) > s.maxBatch {
		return domain.IngestResult{}, &BatchTooLargeError{Size: len(events), Max: s.maxBatch}
	}

	now := s.now()
	prepared := make([]domain.Event, len(events))
	for i, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		prepared[i] = ev
	}

	res, err := s.store.Ingest(ctx, orgID, prepared)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("failed to ingest events: %w", err)
	}

	s.exporter.RecordIngest(ctx, orgID, res.Accepted, res.Rejected)
	s.logger.Info("ingested batch", "org_id", orgID, "accepted", res.Accepted, "rejected", res.Rejected)
	return res, nil
}
