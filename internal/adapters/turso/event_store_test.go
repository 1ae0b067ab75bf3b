package turso_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/migrate"
)

var testBase = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// The shared in-memory database can outlive a previous test's
	// connection pool, so start from an empty table.
	if _, err := db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to reset events table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func event(id, sessionID string, at time.Time) domain.Event {
	return domain.Event{
		ID:          id,
		Type:        domain.EventToolCall,
		Timestamp:   at,
		SessionID:   sessionID,
		UserID:      "user-1",
		AgentID:     "agent-1",
		Environment: "production",
	}
}

func TestIngestAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	ev := event("e1", "s1", testBase)
	ev.Metadata = domain.Metadata{"tokens_input": float64(100), "task_type": "review"}

	res, err := store.Ingest(ctx, "org-1", []domain.Event{ev})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "Accepted", 1, res.Accepted)

	events, err := store.ListByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got := events[0]
	assertEqual(t, "ID", "e1", got.ID)
	assertEqual(t, "Type", domain.EventToolCall, got.Type)
	assertEqual(t, "Timestamp", testBase, got.Timestamp)
	assertEqual(t, "SessionID", "s1", got.SessionID)
	assertEqual(t, "OrgID", "org-1", got.OrgID)
	assertEqual(t, "tokens_input", int64(100), got.Metadata.TokensInput())
	assertEqual(t, "task_type", "review", got.Metadata.TaskType())
}

func TestIngestDuplicateReportsConstraint(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	if _, err := store.Ingest(ctx, "org-1", []domain.Event{event("e1", "s1", testBase)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := store.Ingest(ctx, "org-1", []domain.Event{
		event("e1", "s1", testBase),
		event("e2", "s1", testBase),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "Accepted", 1, res.Accepted)
	assertEqual(t, "Rejected", 1, res.Rejected)
	assertEqual(t, "Code", domain.CodeDuplicate, res.Errors[0].Code)
	assertEqual(t, "Index", 0, res.Errors[0].Index)
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	res, _ := store.Ingest(ctx, "org-1", []domain.Event{event("e1", "s1", testBase)})
	assertEqual(t, "org-1 accepted", 1, res.Accepted)
	res, _ = store.Ingest(ctx, "org-2", []domain.Event{event("e1", "s1", testBase)})
	assertEqual(t, "org-2 accepted", 1, res.Accepted)

	count, err := store.CountByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "org-1 count", int64(1), count)

	exists, _ := store.Exists(ctx, "org-1", "e1")
	assertEqual(t, "exists org-1", true, exists)
	exists, _ = store.Exists(ctx, "org-3", "e1")
	assertEqual(t, "exists org-3", false, exists)
}

func TestListByOrgBetween(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	_, _ = store.Ingest(ctx, "org-1", []domain.Event{
		event("e1", "s1", testBase),
		event("e2", "s1", testBase.Add(time.Hour)),
		event("e3", "s1", testBase.Add(2*time.Hour)),
	})

	events, err := store.ListByOrgBetween(ctx, "org-1", testBase, testBase.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	assertEqual(t, "first", "e1", events[0].ID)
	assertEqual(t, "second", "e2", events[1].ID)
}

func TestListOrderedByTimestamp(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	_, _ = store.Ingest(ctx, "org-1", []domain.Event{
		event("e2", "s1", testBase.Add(time.Hour)),
		event("e1", "s1", testBase),
	})

	events, _ := store.ListByOrg(ctx, "org-1")
	assertEqual(t, "first", "e1", events[0].ID)
	assertEqual(t, "second", "e2", events[1].ID)
}

func TestNullMetadata(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	_, _ = store.Ingest(ctx, "org-1", []domain.Event{event("e1", "s1", testBase)})

	events, err := store.ListByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events[0].Metadata != nil {
		t.Errorf("expected nil metadata, got %v", events[0].Metadata)
	}
}

func TestSizeAndClear(t *testing.T) {
	ctx := context.Background()
	store := turso.NewEventStore(testDB(t))

	_, _ = store.Ingest(ctx, "org-1", []domain.Event{event("e1", "s1", testBase)})
	_, _ = store.Ingest(ctx, "org-2", []domain.Event{event("e1", "s1", testBase)})

	size, err := store.Size(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "size", int64(2), size)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, _ = store.Size(ctx)
	assertEqual(t, "size after clear", int64(0), size)
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
