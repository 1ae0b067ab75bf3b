package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/oselabs/agentsight/internal/analytics"
	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/ingest"
)

type ingestRequest struct {
	Events []domain.Event `json:"events"`
}

func (s *Server) handleIngestEvents(w http.ResponseWriter, r *http.Request, orgID string) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be a JSON object with an events array")
		return
	}

	res, err := s.ingester.Ingest(r.Context(), orgID, req.Events)
	if err != nil {
		var tooLarge *ingest.BatchTooLargeError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", tooLarge.Error())
			return
		}
		s.logger.Error("ingest failed", "org_id", orgID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to ingest events")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()

	period := analytics.Period7d
	if v := q.Get("period"); v != "" {
		period = analytics.Period(v)
		if !period.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_period", "period must be one of 1d, 7d, 30d, 90d")
			return
		}
	}

	compare := true
	if v := q.Get("compare"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_compare", "compare must be a boolean")
			return
		}
		compare = parsed
	}

	overview, err := s.analytics.ComputeOverview(r.Context(), orgID, period, compare)
	if err != nil {
		s.logger.Error("overview failed", "org_id", orgID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute overview")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()

	metric := analytics.Metric(q.Get("metric"))
	if !metric.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_metric", "metric is required and must be a known metric name")
		return
	}

	period := analytics.Period7d
	if v := q.Get("period"); v != "" {
		period = analytics.Period(v)
		if !period.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_period", "period must be one of 1d, 7d, 30d, 90d")
			return
		}
	}

	var granularity analytics.Granularity
	if v := q.Get("granularity"); v != "" {
		granularity = analytics.Granularity(v)
		if !granularity.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_granularity", "granularity must be one of hour, day, week")
			return
		}
	}

	series, err := s.analytics.ComputeTimeseries(r.Context(), orgID, metric, period, granularity)
	if err != nil {
		s.logger.Error("timeseries failed", "org_id", orgID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute timeseries")
		return
	}

	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()

	filter := analytics.SessionFilter{
		AgentID: q.Get("agent_id"),
		UserID:  q.Get("user_id"),
		Cursor:  q.Get("cursor"),
		Limit:   s.defaultPageSize,
	}

	switch v := q.Get("sort_by"); v {
	case "", analytics.SortByStartedAt, analytics.SortByDuration:
		filter.SortBy = v
	default:
		writeError(w, http.StatusBadRequest, "invalid_sort_by", "sort_by must be one of started_at, duration")
		return
	}

	switch v := q.Get("order"); v {
	case "", analytics.SortAsc, analytics.SortDesc:
		filter.SortOrder = v
	default:
		writeError(w, http.StatusBadRequest, "invalid_order", "order must be one of asc, desc")
		return
	}

	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be an RFC 3339 timestamp")
			return
		}
		filter.From = &from
	}

	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be an RFC 3339 timestamp")
			return
		}
		filter.To = &to
	}

	if v := q.Get("status"); v != "" {
		status := domain.SessionStatus(v)
		switch status {
		case domain.SessionActive, domain.SessionCompleted, domain.SessionError:
			filter.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be one of active, completed, error")
			return
		}
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		if limit > s.maxPageSize {
			limit = s.maxPageSize
		}
		filter.Limit = limit
	}

	page, err := s.analytics.ListSessions(r.Context(), orgID, filter)
	if err != nil {
		s.logger.Error("session list failed", "org_id", orgID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request, orgID string) {
	sessionID := r.PathValue("id")

	detail, err := s.analytics.GetSessionDetail(r.Context(), orgID, sessionID)
	if err != nil {
		if errors.Is(err, analytics.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		s.logger.Error("session detail failed", "org_id", orgID, "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load session")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
