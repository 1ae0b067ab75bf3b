package ports

import (
	"context"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// EventStore is the backend strategy for event storage. The in-memory
// adapter and the libsql adapter both satisfy it; which one a process uses
// is decided once at construction time, not per call.
//
// All implementations must guarantee:
//   - (org_id, event_id) uniqueness, with duplicates rejected per item as
//     domain.CodeDuplicate — including duplicates within one batch;
//   - tenant isolation: events ingested under one org never appear in
//     another org's reads;
//   - ListByOrg returns a snapshot ordered ascending by event timestamp
//     that callers may mutate freely.
type EventStore interface {
	// Ingest stores a batch for one tenant. Per-item failures land in the
	// result; the returned error is reserved for the backing store being
	// unavailable, which fails the whole call.
	Ingest(ctx context.Context, orgID string, events []domain.Event) (domain.IngestResult, error)

	ListByOrg(ctx context.Context, orgID string) ([]domain.StoredEvent, error)

	// ListByOrgBetween returns the tenant's events with timestamps in
	// [from, to), ordered ascending by timestamp.
	ListByOrgBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.StoredEvent, error)

	CountByOrg(ctx context.Context, orgID string) (int64, error)
	Exists(ctx context.Context, orgID, eventID string) (bool, error)

	// Size is the total event count across all tenants.
	Size(ctx context.Context) (int64, error)

	// Clear removes every event. Test and reset use only.
	Clear(ctx context.Context) error
}
