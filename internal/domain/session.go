package domain

import (
	"sort"
	"time"
)

// SessionStatus is derived purely from a session's event set.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionError     SessionStatus = "error"
)

// SessionMetrics aggregates task and token counters across one session.
type SessionMetrics struct {
	TasksCompleted      int64
	TasksFailed         int64
	TasksCanceled       int64
	TokensInput         int64
	TokensOutput        int64
	EstimatedCost       float64
	TaskDurationTotalMS int64
	TaskDurationCount   int64
}

// Timeline summarizes the raw event stream behind a session.
type Timeline struct {
	EventCount int
	FirstEvent time.Time
	LastEvent  time.Time
}

// Session is a derived entity: it is never stored, only recomputed from the
// event set belonging to one session_id. Recomputing on every read means it
// can never drift from the events, at the price of full recomputation cost.
type Session struct {
	ID          string
	UserID      string
	AgentID     string
	Environment Environment
	Status      SessionStatus
	StartedAt   time.Time
	EndedAt     *time.Time
	Duration    *time.Duration
	HasStart    bool
	Metrics     SessionMetrics
	Timeline    Timeline

	// errorSeen tracks error-class events for sessions that are still
	// active; status only flips to "error" once the session has ended.
	errorSeen bool
}

// AvgTaskDurationMS is the mean of all duration_ms values present in the
// session's events. The second return is false when no event carried one.
func (s *Session) AvgTaskDurationMS() (float64, bool) {
	if s.Metrics.TaskDurationCount == 0 {
		return 0, false
	}
	return float64(s.Metrics.TaskDurationTotalMS) / float64(s.Metrics.TaskDurationCount), true
}

// MeasuredDurationSeconds returns the session duration used by the
// avg_session_duration metric: the start-to-end span when the session has
// both a start and an end event, otherwise the summed duration_ms of its
// task events. False when neither measurement exists.
func (s *Session) MeasuredDurationSeconds() (float64, bool) {
	if s.HasStart && s.Duration != nil {
		return s.Duration.Seconds(), true
	}
	if s.Metrics.TaskDurationCount > 0 {
		return float64(s.Metrics.TaskDurationTotalMS) / 1000, true
	}
	return 0, false
}

// HasErrors reports whether any error-class event occurred in the session.
func (s *Session) HasErrors() bool {
	return s.errorSeen
}

// Reconstruct derives sessions from a tenant's event set. Events may arrive
// in any order; each session_id group is sorted by timestamp before
// derivation. The result is ordered by StartedAt ascending.
func Reconstruct(events []StoredEvent, pricing TokenPricing) []Session {
	groups := make(map[string][]StoredEvent)
	for _, ev := range events {
		groups[ev.SessionID] = append(groups[ev.SessionID], ev)
	}

	sessions := make([]Session, 0, len(groups))
	for id, evs := range groups {
		sessions = append(sessions, reconstructOne(id, evs, pricing))
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

func reconstructOne(id string, evs []StoredEvent, pricing TokenPricing) Session {
	sort.Slice(evs, func(i, j int) bool {
		return evs[i].Timestamp.Before(evs[j].Timestamp)
	})

	s := Session{
		ID:        id,
		Status:    SessionActive,
		StartedAt: evs[0].Timestamp,
		Timeline: Timeline{
			EventCount: len(evs),
			FirstEvent: evs[0].Timestamp,
			LastEvent:  evs[len(evs)-1].Timestamp,
		},
	}

	errorSeen := false
	for _, ev := range evs {
		if s.UserID == "" {
			s.UserID = ev.UserID
		}
		if s.AgentID == "" {
			s.AgentID = ev.AgentID
		}
		if s.Environment == "" {
			s.Environment = ev.Environment
		}

		switch ev.Type {
		case EventSessionStart:
			s.HasStart = true
		case EventSessionEnd:
			if s.EndedAt == nil {
				t := ev.Timestamp
				s.EndedAt = &t
			}
		case EventTaskComplete:
			s.Metrics.TasksCompleted++
		case EventTaskError:
			s.Metrics.TasksFailed++
		case EventTaskCancel:
			s.Metrics.TasksCanceled++
		}

		if ev.Type.IsErrorClass() {
			errorSeen = true
		}

		s.Metrics.TokensInput += ev.Metadata.TokensInput()
		s.Metrics.TokensOutput += ev.Metadata.TokensOutput()
		if ms, ok := ev.Metadata.DurationMS(); ok {
			s.Metrics.TaskDurationTotalMS += ms
			s.Metrics.TaskDurationCount++
		}
	}

	if s.EndedAt != nil {
		if errorSeen {
			s.Status = SessionError
		} else {
			s.Status = SessionCompleted
		}
		d := s.EndedAt.Sub(s.StartedAt)
		s.Duration = &d
	}
	s.errorSeen = errorSeen

	s.Metrics.EstimatedCost = pricing.Cost(s.Metrics.TokensInput, s.Metrics.TokensOutput)
	return s
}
