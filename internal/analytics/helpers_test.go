package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// Fixed anchor: Monday 2026-03-02 12:00 UTC.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type eventSpec struct {
	id      string
	typ     domain.EventType
	at      time.Time
	session string
	user    string
	agent   string
	meta    domain.Metadata
}

func build(specs []eventSpec) []domain.StoredEvent {
	events := make([]domain.StoredEvent, 0, len(specs))
	for _, sp := range specs {
		user := sp.user
		if user == "" {
			user = "user-1"
		}
		agent := sp.agent
		if agent == "" {
			agent = "agent-1"
		}
		events = append(events, domain.StoredEvent{
			Event: domain.Event{
				ID:          sp.id,
				Type:        sp.typ,
				Timestamp:   sp.at,
				SessionID:   sp.session,
				UserID:      user,
				AgentID:     agent,
				Environment: "production",
				Metadata:    sp.meta,
			},
			OrgID:      "org-1",
			IngestedAt: sp.at,
		})
	}
	return events
}

// completedSession emits a start and end pair, with an optional error event
// in between.
func completedSession(id string, start time.Time, length time.Duration, user string, withError bool) []eventSpec {
	specs := []eventSpec{
		{id: id + "-start", typ: domain.EventSessionStart, at: start, session: id, user: user},
		{id: id + "-end", typ: domain.EventSessionEnd, at: start.Add(length), session: id, user: user},
	}
	if withError {
		specs = append(specs, eventSpec{
			id: id + "-err", typ: domain.EventError, at: start.Add(length / 2), session: id, user: user,
		})
	}
	return specs
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

type nopExporter struct{}

func (nopExporter) RecordIngest(ctx context.Context, orgID string, accepted, rejected int) {}
func (nopExporter) RecordCacheLookup(ctx context.Context, query string, hit bool)          {}
func (nopExporter) Close(ctx context.Context) error                                        { return nil }

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
