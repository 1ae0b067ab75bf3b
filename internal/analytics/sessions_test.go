package analytics

import (
	"testing"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

func sessionFixture() []domain.StoredEvent {
	var specs []eventSpec
	specs = append(specs, completedSession("s1", testNow.Add(-4*time.Hour), 10*time.Minute, "alice", false)...)
	specs = append(specs, completedSession("s2", testNow.Add(-3*time.Hour), 30*time.Minute, "bob", true)...)
	specs = append(specs, eventSpec{
		id: "s3-start", typ: domain.EventSessionStart, at: testNow.Add(-time.Hour), session: "s3", user: "alice", agent: "agent-2",
	})
	return build(specs)
}

func TestListSessionsDefaultOrder(t *testing.T) {
	page := listSessions(sessionFixture(), SessionFilter{}, testNow, domain.DefaultPricing)

	if len(page.Data) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(page.Data))
	}
	// Newest first.
	assertEqual(t, "first", "s3", page.Data[0].SessionID)
	assertEqual(t, "second", "s2", page.Data[1].SessionID)
	assertEqual(t, "third", "s1", page.Data[2].SessionID)
	assertEqual(t, "has_more", false, page.Pagination.HasMore)
}

func TestListSessionsStatusFilter(t *testing.T) {
	tests := []struct {
		status   domain.SessionStatus
		expected string
	}{
		{domain.SessionCompleted, "s1"},
		{domain.SessionError, "s2"},
		{domain.SessionActive, "s3"},
	}

	for _, tt := range tests {
		page := listSessions(sessionFixture(), SessionFilter{Status: tt.status}, testNow, domain.DefaultPricing)
		if len(page.Data) != 1 {
			t.Fatalf("status %s: expected 1 session, got %d", tt.status, len(page.Data))
		}
		assertEqual(t, string(tt.status), tt.expected, page.Data[0].SessionID)
	}
}

func TestListSessionsUserAndAgentFilters(t *testing.T) {
	page := listSessions(sessionFixture(), SessionFilter{UserID: "alice"}, testNow, domain.DefaultPricing)
	assertEqual(t, "alice sessions", 2, len(page.Data))

	page = listSessions(sessionFixture(), SessionFilter{AgentID: "agent-2"}, testNow, domain.DefaultPricing)
	assertEqual(t, "agent-2 sessions", 1, len(page.Data))
	assertEqual(t, "agent-2 id", "s3", page.Data[0].SessionID)
}

func TestListSessionsSortByDuration(t *testing.T) {
	page := listSessions(sessionFixture(), SessionFilter{
		SortBy:    SortByDuration,
		SortOrder: SortDesc,
	}, testNow, domain.DefaultPricing)

	// s2 (30m) > s1 (10m) > s3 (active, no duration).
	assertEqual(t, "first", "s2", page.Data[0].SessionID)
	assertEqual(t, "second", "s1", page.Data[1].SessionID)
	assertEqual(t, "third", "s3", page.Data[2].SessionID)

	page = listSessions(sessionFixture(), SessionFilter{
		SortBy:    SortByDuration,
		SortOrder: SortAsc,
	}, testNow, domain.DefaultPricing)
	assertEqual(t, "asc first", "s3", page.Data[0].SessionID)
}

func TestListSessionsPagination(t *testing.T) {
	events := sessionFixture()

	first := listSessions(events, SessionFilter{Limit: 2}, testNow, domain.DefaultPricing)
	assertEqual(t, "first page len", 2, len(first.Data))
	assertEqual(t, "has_more", true, first.Pagination.HasMore)
	assertEqual(t, "cursor", "s2", first.Pagination.Cursor)

	second := listSessions(events, SessionFilter{Limit: 2, Cursor: first.Pagination.Cursor}, testNow, domain.DefaultPricing)
	assertEqual(t, "second page len", 1, len(second.Data))
	assertEqual(t, "second page id", "s1", second.Data[0].SessionID)
	assertEqual(t, "second has_more", false, second.Pagination.HasMore)
}

func TestListSessionsUnknownCursorFallsBackToFirstPage(t *testing.T) {
	page := listSessions(sessionFixture(), SessionFilter{Limit: 2, Cursor: "no-such-session"}, testNow, domain.DefaultPricing)
	assertEqual(t, "len", 2, len(page.Data))
	assertEqual(t, "first", "s3", page.Data[0].SessionID)
}

func TestListSessionsDefaultWindow(t *testing.T) {
	specs := completedSession("recent", testNow.Add(-time.Hour), 5*time.Minute, "alice", false)
	specs = append(specs, completedSession("ancient", testNow.AddDate(0, 0, -120), 5*time.Minute, "alice", false)...)
	events := build(specs)

	page := listSessions(events, SessionFilter{}, testNow, domain.DefaultPricing)
	assertEqual(t, "len", 1, len(page.Data))
	assertEqual(t, "id", "recent", page.Data[0].SessionID)

	// An explicit From reaches further back.
	from := testNow.AddDate(0, 0, -180)
	page = listSessions(events, SessionFilter{From: &from}, testNow, domain.DefaultPricing)
	assertEqual(t, "explicit window len", 2, len(page.Data))
}

func TestGetSessionDetail(t *testing.T) {
	var specs []eventSpec
	specs = append(specs, completedSession("s1", testNow.Add(-2*time.Hour), 20*time.Minute, "alice", false)...)
	specs = append(specs, eventSpec{
		id: "s1-task", typ: domain.EventTaskComplete, at: testNow.Add(-110 * time.Minute), session: "s1", user: "alice",
		meta: domain.Metadata{"duration_ms": float64(5000), "tokens_input": float64(100)},
	})
	events := build(specs)

	detail, ok := getSessionDetail(events, "s1", domain.DefaultPricing)
	if !ok {
		t.Fatal("expected session to be found")
	}

	assertEqual(t, "SessionID", "s1", detail.SessionID)
	assertEqual(t, "Status", domain.SessionCompleted, detail.Status)
	assertEqual(t, "EventCount", 3, detail.Timeline.EventCount)
	if detail.AvgTaskDurationMS == nil {
		t.Fatal("expected avg task duration")
	}
	assertEqual(t, "AvgTaskDurationMS", 5000.0, *detail.AvgTaskDurationMS)

	_, ok = getSessionDetail(events, "missing", domain.DefaultPricing)
	assertEqual(t, "missing session", false, ok)
}

func TestGetSessionDetailClientInfo(t *testing.T) {
	specs := []eventSpec{
		{
			id: "s1-start", typ: domain.EventSessionStart, at: testNow.Add(-time.Hour), session: "s1",
			meta: domain.Metadata{"client_name": "agentsight-sdk", "platform": "linux"},
		},
		// A later event fills in the version the start event left out.
		{
			id: "s1-task", typ: domain.EventTaskComplete, at: testNow.Add(-30 * time.Minute), session: "s1",
			meta: domain.Metadata{"client_version": "1.4.0", "platform": "darwin"},
		},
	}
	events := build(specs)

	detail, ok := getSessionDetail(events, "s1", domain.DefaultPricing)
	if !ok {
		t.Fatal("expected session to be found")
	}
	if detail.ClientInfo == nil {
		t.Fatal("expected client info")
	}
	assertEqual(t, "Name", "agentsight-sdk", detail.ClientInfo.Name)
	assertEqual(t, "Version", "1.4.0", detail.ClientInfo.Version)
	// Earliest report wins per field.
	assertEqual(t, "Platform", "linux", detail.ClientInfo.Platform)

	bare := build([]eventSpec{
		{id: "s2-start", typ: domain.EventSessionStart, at: testNow.Add(-time.Hour), session: "s2"},
	})
	detail, ok = getSessionDetail(bare, "s2", domain.DefaultPricing)
	assertEqual(t, "found", true, ok)
	if detail.ClientInfo != nil {
		t.Fatalf("expected nil client info, got %+v", detail.ClientInfo)
	}
}
