// Package memory provides the default in-memory event store. It is volatile
// by design: restart loses everything, and capacity is bounded only by the
// process heap.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// Store is a tenant-partitioned, append-mostly event collection. The RWMutex
// guards both the per-tenant slices and the (org_id, event_id) index; reads
// hand out snapshot copies so callers can never corrupt the store.
type Store struct {
	mu    sync.RWMutex
	byOrg map[string][]domain.StoredEvent
	index map[string]map[string]struct{}
	now   func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock injects the clock used for ingested_at stamps. Tests use
// this for deterministic timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		byOrg: make(map[string][]domain.StoredEvent),
		index: make(map[string]map[string]struct{}),
		now:   now,
	}
}

func (s *Store) Ingest(ctx context.Context, orgID string, events []domain.Event) (domain.IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := s.index[orgID]
	if seen == nil {
		seen = make(map[string]struct{})
		s.index[orgID] = seen
	}

	var res domain.IngestResult
	ingestedAt := s.now()
	for i, ev := range events {
		if _, dup := seen[ev.ID]; dup {
			res.Reject(i, ev.ID, domain.CodeDuplicate, fmt.Sprintf("event %q already ingested for this org", ev.ID))
			continue
		}
		seen[ev.ID] = struct{}{}
		s.byOrg[orgID] = append(s.byOrg[orgID], domain.StoredEvent{
			Event:      ev,
			OrgID:      orgID,
			IngestedAt: ingestedAt,
		})
		res.Accepted++
	}
	return res, nil
}

func (s *Store) ListByOrg(ctx context.Context, orgID string) ([]domain.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.byOrg[orgID]), nil
}

func (s *Store) ListByOrgBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var in []domain.StoredEvent
	for _, ev := range s.byOrg[orgID] {
		if ev.Timestamp.Before(from) || !ev.Timestamp.Before(to) {
			continue
		}
		in = append(in, ev)
	}
	return snapshot(in), nil
}

func (s *Store) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byOrg[orgID])), nil
}

func (s *Store) Exists(ctx context.Context, orgID, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[orgID][eventID]
	return ok, nil
}

func (s *Store) Size(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, evs := range s.byOrg {
		total += int64(len(evs))
	}
	return total, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOrg = make(map[string][]domain.StoredEvent)
	s.index = make(map[string]map[string]struct{})
	return nil
}

// snapshot returns an independent copy sorted ascending by timestamp.
// Metadata maps are cloned as well so a caller mutation cannot reach stored
// state.
func snapshot(evs []domain.StoredEvent) []domain.StoredEvent {
	out := make([]domain.StoredEvent, len(evs))
	copy(out, evs)
	for i := range out {
		if out[i].Metadata != nil {
			out[i].Metadata = maps.Clone(out[i].Metadata)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
