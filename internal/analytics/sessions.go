package analytics

import (
	"sort"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

const defaultSessionWindowDays = 90

// listSessions filters, sorts and paginates the sessions derived from a
// tenant's events. Cursor resolution scans the sorted, filtered sequence for
// the cursor's position — O(n), which is fine at in-memory scale but a known
// limit for anything larger.
func listSessions(events []domain.StoredEvent, filter SessionFilter, now time.Time, pricing domain.TokenPricing) SessionPage {
	sessions := domain.Reconstruct(events, pricing)

	from := now.AddDate(0, 0, -defaultSessionWindowDays)
	if filter.From != nil {
		from = *filter.From
	}
	to := now
	if filter.To != nil {
		to = *filter.To
	}

	var filtered []domain.Session
	for _, s := range sessions {
		if s.StartedAt.Before(from) || s.StartedAt.After(to) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.AgentID != "" && s.AgentID != filter.AgentID {
			continue
		}
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		filtered = append(filtered, s)
	}

	sortSessions(filtered, filter.SortBy, filter.SortOrder)

	start := 0
	if filter.Cursor != "" {
		for i, s := range filtered {
			if s.ID == filter.Cursor {
				start = i + 1
				break
			}
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := SessionPage{Data: make([]SessionSummary, 0, end-start)}
	for _, s := range filtered[start:end] {
		page.Data = append(page.Data, summarize(&s))
	}
	if len(page.Data) > 0 {
		page.Pagination.Cursor = page.Data[len(page.Data)-1].SessionID
	}
	page.Pagination.HasMore = end < len(filtered)
	return page
}

// sortSessions orders in place; default is started_at descending. Sessions
// without a duration sort as zero when ordering by duration.
func sortSessions(sessions []domain.Session, sortBy, order string) {
	if sortBy == "" {
		sortBy = SortByStartedAt
	}
	if order == "" {
		order = SortDesc
	}

	less := func(i, j int) bool {
		a, b := &sessions[i], &sessions[j]
		switch sortBy {
		case SortByDuration:
			da, db := durationOrZero(a), durationOrZero(b)
			if da != db {
				return da < db
			}
			return a.ID < b.ID
		default:
			if !a.StartedAt.Equal(b.StartedAt) {
				return a.StartedAt.Before(b.StartedAt)
			}
			return a.ID < b.ID
		}
	}

	if order == SortDesc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(sessions, less)
}

func durationOrZero(s *domain.Session) time.Duration {
	if s.Duration == nil {
		return 0
	}
	return *s.Duration
}

// getSessionDetail derives the detail view for one session. The second
// return is false when the tenant has no events for that session_id.
func getSessionDetail(events []domain.StoredEvent, sessionID string, pricing domain.TokenPricing) (SessionDetail, bool) {
	var in []domain.StoredEvent
	for _, ev := range events {
		if ev.SessionID == sessionID {
			in = append(in, ev)
		}
	}
	if len(in) == 0 {
		return SessionDetail{}, false
	}

	sessions := domain.Reconstruct(in, pricing)
	s := &sessions[0]

	detail := SessionDetail{
		SessionSummary: summarize(s),
		Timeline: SessionTimeline{
			EventCount: s.Timeline.EventCount,
			FirstEvent: s.Timeline.FirstEvent,
			LastEvent:  s.Timeline.LastEvent,
		},
	}
	if avg, ok := s.AvgTaskDurationMS(); ok {
		detail.AvgTaskDurationMS = &avg
	}
	detail.ClientInfo = clientInfo(in)
	return detail, true
}

// clientInfo takes each field from the earliest event that reports it; nil
// when no event carries any client metadata.
func clientInfo(events []domain.StoredEvent) *ClientInfo {
	var info ClientInfo
	for _, ev := range events {
		if info.Name == "" {
			info.Name = ev.Metadata.String(domain.MetaClientName)
		}
		if info.Version == "" {
			info.Version = ev.Metadata.String(domain.MetaClientVersion)
		}
		if info.Platform == "" {
			info.Platform = ev.Metadata.String(domain.MetaPlatform)
		}
	}
	if info == (ClientInfo{}) {
		return nil
	}
	return &info
}

func summarize(s *domain.Session) SessionSummary {
	summary := SessionSummary{
		SessionID:   s.ID,
		UserID:      s.UserID,
		AgentID:     s.AgentID,
		Environment: s.Environment,
		Status:      s.Status,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		Metrics: SessionMetricsView{
			TasksCompleted: s.Metrics.TasksCompleted,
			TasksFailed:    s.Metrics.TasksFailed,
			TasksCanceled:  s.Metrics.TasksCanceled,
			TokensInput:    s.Metrics.TokensInput,
			TokensOutput:   s.Metrics.TokensOutput,
			EstimatedCost:  round2(s.Metrics.EstimatedCost),
		},
	}
	if s.Duration != nil {
		secs := s.Duration.Seconds()
		summary.DurationSeconds = &secs
	}
	return summary
}
