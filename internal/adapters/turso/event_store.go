package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oselabs/agentsight/internal/domain"
)

// tsLayout is a fixed-width UTC timestamp format so the stored TEXT column
// sorts lexicographically in chronological order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// EventStore implements ports.EventStore on a libsql database. Idempotency
// rides on the (org_id, event_id) primary key: a constraint violation on
// insert is reported per item as a duplicate, both across batches and within
// one batch.
type EventStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventStore(db *sql.DB) *EventStore {
	return NewEventStoreWithClock(db, time.Now)
}

func NewEventStoreWithClock(db *sql.DB, now func() time.Time) *EventStore {
	return &EventStore{db: db, now: now}
}

func (s *EventStore) Ingest(ctx context.Context, orgID string, events []domain.Event) (domain.IngestResult, error) {
	var res domain.IngestResult
	ingestedAt := formatTS(s.now())

	for i, ev := range events {
		var metadata sql.NullString
		if ev.Metadata != nil {
			data, err := json.Marshal(ev.Metadata)
			if err != nil {
				res.Reject(i, ev.ID, domain.CodeDBError, fmt.Sprintf("failed to encode metadata: %v", err))
				continue
			}
			metadata = sql.NullString{String: string(data), Valid: true}
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO events (org_id, event_id, event_type, timestamp, session_id, user_id, agent_id, environment, metadata, ingested_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orgID, ev.ID, string(ev.Type), formatTS(ev.Timestamp),
			ev.SessionID, ev.UserID, ev.AgentID, string(ev.Environment),
			metadata, ingestedAt,
		)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			if isUniqueViolation(err) {
				res.Reject(i, ev.ID, domain.CodeDuplicate, fmt.Sprintf("event %q already ingested for this org", ev.ID))
			} else {
				res.Reject(i, ev.ID, domain.CodeDBError, fmt.Sprintf("failed to store event: %v", err))
			}
			continue
		}
		res.Accepted++
	}
	return res, nil
}

func (s *EventStore) ListByOrg(ctx context.Context, orgID string) ([]domain.StoredEvent, error) {
	return s.list(ctx, `
		SELECT org_id, event_id, event_type, timestamp, session_id, user_id, agent_id, environment, metadata, ingested_at
		FROM events WHERE org_id = ? ORDER BY timestamp ASC`, orgID)
}

func (s *EventStore) ListByOrgBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.StoredEvent, error) {
	return s.list(ctx, `
		SELECT org_id, event_id, event_type, timestamp, session_id, user_id, agent_id, environment, metadata, ingested_at
		FROM events WHERE org_id = ? AND timestamp >= ? AND timestamp < ? ORDER BY timestamp ASC`,
		orgID, formatTS(from), formatTS(to))
}

func (s *EventStore) list(ctx context.Context, query string, args ...any) ([]domain.StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.StoredEvent
	for rows.Next() {
		var (
			ev       domain.StoredEvent
			ts, ing  string
			metadata sql.NullString
		)
		if err := rows.Scan(&ev.OrgID, &ev.ID, &ev.Type, &ts, &ev.SessionID, &ev.UserID, &ev.AgentID, &ev.Environment, &metadata, &ing); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Timestamp = parseTS(ts)
		ev.IngestedAt = parseTS(ing)
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for event %q: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *EventStore) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE org_id = ?`, orgID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (s *EventStore) Exists(ctx context.Context, orgID, eventID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE org_id = ? AND event_id = ?`, orgID, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return true, nil
}

func (s *EventStore) Size(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (s *EventStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT")
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		// Tolerate rows written by other tools in plain RFC3339.
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
