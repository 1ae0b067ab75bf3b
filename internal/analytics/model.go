// Package analytics derives windowed overview metrics, time-bucketed series
// and session views from a tenant's event set.
package analytics

import (
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// Period is a fixed query window length ending at now.
type Period string

const (
	Period1d  Period = "1d"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// Days maps a period to its day count. Unknown values fall back to 7 days so
// the aggregation pass stays total; the calling layer validates periods
// before they reach the engine.
func (p Period) Days() int {
	switch p {
	case Period1d:
		return 1
	case Period7d:
		return 7
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 7
	}
}

func (p Period) Valid() bool {
	switch p {
	case Period1d, Period7d, Period30d, Period90d:
		return true
	}
	return false
}

// DefaultGranularity is the bucket size used when the caller does not pick
// one: hourly for a day, daily up to a month, weekly beyond.
func (p Period) DefaultGranularity() Granularity {
	switch p {
	case Period1d:
		return GranularityHour
	case Period90d:
		return GranularityWeek
	default:
		return GranularityDay
	}
}

// Window returns the current query window [now − period, now].
func (p Period) Window(now time.Time) Window {
	return Window{
		Start: now.Add(-time.Duration(p.Days()) * 24 * time.Hour),
		End:   now,
	}
}

// Window is a closed time range over which aggregates are computed.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Previous returns the immediately preceding window of equal length.
func (w Window) Previous() Window {
	return Window{
		Start: w.Start.Add(-w.End.Sub(w.Start)),
		End:   w.Start,
	}
}

// Contains reports whether t falls inside the window, both bounds inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Granularity is the bucket size of a timeseries.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek:
		return true
	}
	return false
}

// Metric names a timeseries metric.
type Metric string

const (
	MetricActiveUsers     Metric = "active_users"
	MetricTotalSessions   Metric = "total_sessions"
	MetricSessionDuration Metric = "session_duration"
	MetricSuccessRate     Metric = "success_rate"
	MetricErrorRate       Metric = "error_rate"
	MetricTokensUsed      Metric = "tokens_used"
	MetricCost            Metric = "cost"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricActiveUsers, MetricTotalSessions, MetricSessionDuration,
		MetricSuccessRate, MetricErrorRate, MetricTokensUsed, MetricCost:
		return true
	}
	return false
}

// Trend classifies a period-over-period change.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MetricValue is one overview metric, with comparison fields populated only
// when the previous period was requested.
type MetricValue struct {
	Value         float64  `json:"value"`
	Previous      *float64 `json:"previous,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Trend         *Trend   `json:"trend,omitempty"`
}

// OverviewMetrics is the full overview metric set for one window.
type OverviewMetrics struct {
	ActiveUsers        MetricValue `json:"active_users"`
	TotalSessions      MetricValue `json:"total_sessions"`
	SuccessRate        MetricValue `json:"success_rate"`
	TotalCost          MetricValue `json:"total_cost"`
	AvgSessionDuration MetricValue `json:"avg_session_duration"`
	ErrorCount         MetricValue `json:"error_count"`
}

// Overview is the computeOverview result shape.
type Overview struct {
	Period  Window          `json:"period"`
	Metrics OverviewMetrics `json:"metrics"`
}

// TimeseriesPoint is one bucket of a series.
type TimeseriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TimeseriesAggregations summarizes a series' values. Percentiles use the
// floor(n·p) index on the ascending-sorted values.
type TimeseriesAggregations struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// TimeseriesPeriod describes the series window.
type TimeseriesPeriod struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

// Timeseries is the computeTimeseries result shape.
type Timeseries struct {
	Metric       Metric                  `json:"metric"`
	Period       TimeseriesPeriod        `json:"period"`
	Granularity  Granularity             `json:"granularity"`
	Data         []TimeseriesPoint       `json:"data"`
	Aggregations *TimeseriesAggregations `json:"aggregations,omitempty"`
}

// SessionMetricsView is the per-session metrics block in list and detail
// responses.
type SessionMetricsView struct {
	TasksCompleted int64   `json:"tasks_completed"`
	TasksFailed    int64   `json:"tasks_failed"`
	TasksCanceled  int64   `json:"tasks_canceled"`
	TokensInput    int64   `json:"tokens_input"`
	TokensOutput   int64   `json:"tokens_output"`
	EstimatedCost  float64 `json:"estimated_cost"`
}

// SessionSummary is the list-view session shape.
type SessionSummary struct {
	SessionID       string               `json:"session_id"`
	UserID          string               `json:"user_id"`
	AgentID         string               `json:"agent_id"`
	Environment     domain.Environment   `json:"environment"`
	Status          domain.SessionStatus `json:"status"`
	StartedAt       time.Time            `json:"started_at"`
	EndedAt         *time.Time           `json:"ended_at,omitempty"`
	DurationSeconds *float64             `json:"duration_seconds,omitempty"`
	Metrics         SessionMetricsView   `json:"metrics"`
}

// SessionTimeline is the raw-stream summary in detail responses.
type SessionTimeline struct {
	EventCount int       `json:"event_count"`
	FirstEvent time.Time `json:"first_event"`
	LastEvent  time.Time `json:"last_event"`
}

// ClientInfo identifies the client that produced a session's events, read
// from metadata when any event reported it.
type ClientInfo struct {
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// SessionDetail extends the summary with task-duration and timeline data.
type SessionDetail struct {
	SessionSummary
	AvgTaskDurationMS *float64        `json:"avg_task_duration_ms,omitempty"`
	Timeline          SessionTimeline `json:"timeline"`
	ClientInfo        *ClientInfo     `json:"client_info,omitempty"`
}

// Session list sort keys and orders.
const (
	SortByStartedAt = "started_at"
	SortByDuration  = "duration"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// SessionFilter narrows and orders the session list. Zero values mean "no
// filter"; an unset window defaults to the last 90 days.
type SessionFilter struct {
	Status  domain.SessionStatus
	AgentID string
	UserID  string
	From    *time.Time
	To      *time.Time

	SortBy    string
	SortOrder string

	// Cursor is the session_id of the last item on the previous page.
	Cursor string
	Limit  int
}

// Pagination carries the continuation cursor for the session list.
type Pagination struct {
	Cursor  string `json:"cursor"`
	HasMore bool   `json:"has_more"`
}

// SessionPage is one page of the session list.
type SessionPage struct {
	Data       []SessionSummary `json:"data"`
	Pagination Pagination       `json:"pagination"`
}
