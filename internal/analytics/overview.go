package analytics

import (
	"math"

	"github.com/oselabs/agentsight/internal/domain"
)

// windowStats holds the six overview metrics for a single window.
type windowStats struct {
	activeUsers        float64
	totalSessions      float64
	successRate        float64
	totalCost          float64
	avgSessionDuration float64
	errorCount         float64
}

// computeOverview derives the overview for the window ending at now. events
// may span a wider range than the window; each window restricts them by
// timestamp itself.
func computeOverview(events []domain.StoredEvent, window Window, compare bool, pricing domain.TokenPricing) Overview {
	current := computeWindowStats(events, window, pricing)

	metrics := OverviewMetrics{
		ActiveUsers:        MetricValue{Value: current.activeUsers},
		TotalSessions:      MetricValue{Value: current.totalSessions},
		SuccessRate:        MetricValue{Value: current.successRate},
		TotalCost:          MetricValue{Value: current.totalCost},
		AvgSessionDuration: MetricValue{Value: current.avgSessionDuration},
		ErrorCount:         MetricValue{Value: current.errorCount},
	}

	if compare {
		previous := computeWindowStats(events, window.Previous(), pricing)
		metrics.ActiveUsers = compareMetric(current.activeUsers, previous.activeUsers)
		metrics.TotalSessions = compareMetric(current.totalSessions, previous.totalSessions)
		metrics.SuccessRate = compareMetric(current.successRate, previous.successRate)
		metrics.TotalCost = compareMetric(current.totalCost, previous.totalCost)
		metrics.AvgSessionDuration = compareMetric(current.avgSessionDuration, previous.avgSessionDuration)
		metrics.ErrorCount = compareMetric(current.errorCount, previous.errorCount)
	}

	return Overview{Period: window, Metrics: metrics}
}

// computeWindowStats restricts events to the window and derives the metric
// set. Sessions are reconstructed from the restricted events only, so a
// session straddling the window boundary is judged on its in-window events.
func computeWindowStats(events []domain.StoredEvent, window Window, pricing domain.TokenPricing) windowStats {
	var in []domain.StoredEvent
	for _, ev := range events {
		if window.Contains(ev.Timestamp) {
			in = append(in, ev)
		}
	}

	var stats windowStats

	users := make(map[string]struct{})
	for _, ev := range in {
		if ev.UserID != "" {
			users[ev.UserID] = struct{}{}
		}
		if ev.Type.IsErrorClass() {
			stats.errorCount++
		}
		stats.totalCost += pricing.Cost(ev.Metadata.TokensInput(), ev.Metadata.TokensOutput())
	}
	stats.activeUsers = float64(len(users))

	sessions := domain.Reconstruct(in, pricing)
	stats.totalSessions = float64(len(sessions))

	var terminal, clean float64
	var durationSum float64
	var durationCount int
	for i := range sessions {
		s := &sessions[i]
		if s.EndedAt != nil {
			terminal++
			if !s.HasErrors() {
				clean++
			}
		}
		if secs, ok := s.MeasuredDurationSeconds(); ok {
			durationSum += secs
			durationCount++
		}
	}

	// A window with no terminated sessions has nothing to fail: 100%.
	stats.successRate = 100
	if terminal > 0 {
		stats.successRate = round2(clean / terminal * 100)
	}

	if durationCount > 0 {
		stats.avgSessionDuration = round2(durationSum / float64(durationCount))
	}

	// Cost stays unrounded here: at $0.000003 per input token the sub-cent
	// digits are the signal. The timeseries cost metric rounds per bucket for
	// charting; the overview reports the exact sum.
	return stats
}

// compareMetric attaches previous-period comparison fields to a metric.
func compareMetric(current, previous float64) MetricValue {
	cp := changePercent(current, previous)
	trend := trendOf(cp)
	return MetricValue{
		Value:         current,
		Previous:      &previous,
		ChangePercent: &cp,
		Trend:         &trend,
	}
}

// changePercent is (current − previous) / previous × 100, rounded to two
// decimals. A jump from zero reads as +100; flat zero reads as 0.
func changePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// trendOf classifies a change: movements within ±1% are noise, not a trend.
func trendOf(changePercent float64) Trend {
	switch {
	case changePercent > 1:
		return TrendUp
	case changePercent < -1:
		return TrendDown
	default:
		return TrendStable
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
