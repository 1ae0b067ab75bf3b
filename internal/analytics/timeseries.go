package analytics

import (
	"sort"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// computeTimeseries buckets the window ending at now into calendar-aligned
// intervals and evaluates one metric per bucket.
//
// Buckets select events by timestamp independently of each other, so a
// session whose events straddle a bucket boundary contributes to every
// bucket it touches for active_users and total_sessions. Summing per-bucket
// unique counts therefore does not reproduce the whole-window unique count;
// that is the intended bucketed-activity reading, not a bug.
func computeTimeseries(events []domain.StoredEvent, now time.Time, metric Metric, period Period, granularity Granularity, loc *time.Location, pricing domain.TokenPricing) Timeseries {
	if granularity == "" {
		granularity = period.DefaultGranularity()
	}

	window := period.Window(now)
	var data []TimeseriesPoint

	for start := floorTo(window.Start, granularity, loc); start.Before(now); start = nextBucket(start, granularity, loc) {
		end := nextBucket(start, granularity, loc)
		if end.After(now) {
			// Final partial bucket ends exactly at now.
			end = now
		}
		value := bucketValue(events, metric, start, end, pricing)
		data = append(data, TimeseriesPoint{Timestamp: start, Value: value})
	}

	series := Timeseries{
		Metric: metric,
		Period: TimeseriesPeriod{
			Start:       window.Start,
			End:         window.End,
			Granularity: granularity,
		},
		Granularity: granularity,
		Data:        data,
	}
	if len(data) > 0 {
		series.Aggregations = aggregate(data)
	}
	return series
}

// bucketValue evaluates a metric over events with timestamps in [start, end).
// Unrecognized metrics yield 0 so the pass stays total.
func bucketValue(events []domain.StoredEvent, metric Metric, start, end time.Time, pricing domain.TokenPricing) float64 {
	var in []domain.StoredEvent
	for _, ev := range events {
		if !ev.Timestamp.Before(start) && ev.Timestamp.Before(end) {
			in = append(in, ev)
		}
	}

	switch metric {
	case MetricActiveUsers:
		users := make(map[string]struct{})
		for _, ev := range in {
			if ev.UserID != "" {
				users[ev.UserID] = struct{}{}
			}
		}
		return float64(len(users))

	case MetricTotalSessions:
		sessions := make(map[string]struct{})
		for _, ev := range in {
			sessions[ev.SessionID] = struct{}{}
		}
		return float64(len(sessions))

	case MetricSessionDuration:
		sessions := domain.Reconstruct(in, pricing)
		var sum float64
		var count int
		for i := range sessions {
			if secs, ok := sessions[i].MeasuredDurationSeconds(); ok {
				sum += secs
				count++
			}
		}
		if count == 0 {
			return 0
		}
		return round2(sum / float64(count))

	case MetricSuccessRate:
		sessions := domain.Reconstruct(in, pricing)
		var terminal, clean float64
		for i := range sessions {
			if sessions[i].EndedAt != nil {
				terminal++
				if !sessions[i].HasErrors() {
					clean++
				}
			}
		}
		// Same policy as the window-level metric: nothing terminated means
		// nothing failed, including for empty buckets.
		if terminal == 0 {
			return 100
		}
		return round2(clean / terminal * 100)

	case MetricErrorRate:
		sessions := domain.Reconstruct(in, pricing)
		if len(sessions) == 0 {
			return 0
		}
		var withErrors float64
		for i := range sessions {
			if sessions[i].HasErrors() {
				withErrors++
			}
		}
		return round2(withErrors / float64(len(sessions)) * 100)

	case MetricTokensUsed:
		var total int64
		for _, ev := range in {
			total += ev.Metadata.TokensInput() + ev.Metadata.TokensOutput()
		}
		return float64(total)

	case MetricCost:
		var cost float64
		for _, ev := range in {
			cost += pricing.Cost(ev.Metadata.TokensInput(), ev.Metadata.TokensOutput())
		}
		return round2(cost)

	default:
		return 0
	}
}

// aggregate summarizes the series values. Percentiles pick index floor(n·p)
// from the ascending-sorted values.
func aggregate(data []TimeseriesPoint) *TimeseriesAggregations {
	values := make([]float64, len(data))
	for i, p := range data {
		values[i] = p.Value
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}

	return &TimeseriesAggregations{
		Min: values[0],
		Max: values[len(values)-1],
		Avg: round2(sum / float64(len(values))),
		Sum: sum,
		P50: percentile(values, 0.5),
		P95: percentile(values, 0.95),
	}
}

// percentile expects values sorted ascending.
func percentile(values []float64, p float64) float64 {
	idx := int(float64(len(values)) * p)
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

// floorTo aligns t to the start of its calendar bucket: top of the hour,
// local midnight, or the preceding Monday at midnight.
func floorTo(t time.Time, g Granularity, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	case GranularityWeek:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		daysSinceMonday := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -daysSinceMonday)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// nextBucket steps one bucket forward. Days and weeks step by calendar date
// so DST transitions keep buckets aligned to midnight.
func nextBucket(t time.Time, g Granularity, loc *time.Location) time.Time {
	switch g {
	case GranularityHour:
		return t.Add(time.Hour)
	case GranularityWeek:
		return t.In(loc).AddDate(0, 0, 7)
	default:
		return t.In(loc).AddDate(0, 0, 1)
	}
}
