package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oselabs/agentsight/internal/cache"
	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/ports"
)

// ErrSessionNotFound is returned when a tenant has no events for the
// requested session_id.
var ErrSessionNotFound = errors.New("session not found")

// DefaultCacheTTL bounds how stale a memoized overview or timeseries result
// may be.
const DefaultCacheTTL = 30 * time.Second

// Service answers the aggregate queries for one process. It owns no state of
// its own: every result is derived from the event store, with the cache
// short-circuiting repeated identical queries.
type Service struct {
	store    ports.EventStore
	cache    *cache.Cache
	logger   ports.Logger
	exporter ports.MetricsExporter
	pricing  domain.TokenPricing
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewService(store ports.EventStore, c *cache.Cache, logger ports.Logger, exporter ports.MetricsExporter, cacheTTL time.Duration) *Service {
	return NewServiceWithClock(store, c, logger, exporter, cacheTTL, time.Now)
}

// NewServiceWithClock injects the clock that anchors every query window.
func NewServiceWithClock(store ports.EventStore, c *cache.Cache, logger ports.Logger, exporter ports.MetricsExporter, cacheTTL time.Duration, now func() time.Time) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		store:    store,
		cache:    c,
		logger:   logger,
		exporter: exporter,
		pricing:  domain.DefaultPricing,
		cacheTTL: cacheTTL,
		loc:      time.UTC,
		now:      now,
	}
}

// ComputeOverview returns current-window aggregates for a tenant, with
// previous-window comparison when compare is set.
func (s *Service) ComputeOverview(ctx context.Context, orgID string, period Period, compare bool) (Overview, error) {
	key := fmt.Sprintf("overview:%s:%s:%t", orgID, period, compare)

	overview, hit, err := cache.GetOrCompute(s.cache, key, s.cacheTTL, func() (Overview, error) {
		now := s.now()
		window := period.Window(now)
		fetchFrom := window.Start
		if compare {
			fetchFrom = window.Previous().Start
		}

		events, err := s.fetch(ctx, orgID, fetchFrom, now)
		if err != nil {
			return Overview{}, err
		}
		return computeOverview(events, window, compare, s.pricing), nil
	})
	if err != nil {
		return Overview{}, err
	}

	s.exporter.RecordCacheLookup(ctx, "overview", hit)
	s.logger.Debug("computed overview", "org_id", orgID, "period", string(period), "compare", compare, "cache_hit", hit)
	return overview, nil
}

// ComputeTimeseries returns a bucketed series for one metric. An empty
// granularity picks the period's default.
func (s *Service) ComputeTimeseries(ctx context.Context, orgID string, metric Metric, period Period, granularity Granularity) (Timeseries, error) {
	if granularity == "" {
		granularity = period.DefaultGranularity()
	}
	key := fmt.Sprintf("timeseries:%s:%s:%s:%s", orgID, metric, period, granularity)

	series, hit, err := cache.GetOrCompute(s.cache, key, s.cacheTTL, func() (Timeseries, error) {
		now := s.now()
		// Fetch from the first bucket's floor so the leading bucket sees
		// all of its events, not just those inside the window.
		fetchFrom := floorTo(period.Window(now).Start, granularity, s.loc)

		events, err := s.fetch(ctx, orgID, fetchFrom, now)
		if err != nil {
			return Timeseries{}, err
		}
		return computeTimeseries(events, now, metric, period, granularity, s.loc, s.pricing), nil
	})
	if err != nil {
		return Timeseries{}, err
	}

	s.exporter.RecordCacheLookup(ctx, "timeseries", hit)
	s.logger.Debug("computed timeseries", "org_id", orgID, "metric", string(metric), "period", string(period), "granularity", string(granularity), "cache_hit", hit)
	return series, nil
}

// ListSessions returns one page of derived session summaries.
func (s *Service) ListSessions(ctx context.Context, orgID string, filter SessionFilter) (SessionPage, error) {
	now := s.now()
	from := now.AddDate(0, 0, -defaultSessionWindowDays)
	if filter.From != nil {
		from = *filter.From
	}

	events, err := s.fetch(ctx, orgID, from, now)
	if err != nil {
		return SessionPage{}, err
	}
	return listSessions(events, filter, now, s.pricing), nil
}

// GetSessionDetail derives the detail view from the session's full event
// history, regardless of any window.
func (s *Service) GetSessionDetail(ctx context.Context, orgID, sessionID string) (SessionDetail, error) {
	events, err := s.store.ListByOrg(ctx, orgID)
	if err != nil {
		return SessionDetail{}, fmt.Errorf("failed to load events: %w", err)
	}

	detail, ok := getSessionDetail(events, sessionID, s.pricing)
	if !ok {
		return SessionDetail{}, ErrSessionNotFound
	}
	return detail, nil
}

// fetch loads [from, now] for a tenant. The store's range query is exclusive
// at the top, so pad by a nanosecond to keep events stamped exactly now.
func (s *Service) fetch(ctx context.Context, orgID string, from, now time.Time) ([]domain.StoredEvent, error) {
	events, err := s.store.ListByOrgBetween(ctx, orgID, from, now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}
