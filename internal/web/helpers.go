package web

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// withRequestID tags every response with an X-Request-ID so log lines and
// client reports can be correlated. An incoming ID is kept.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// orgHandler is a handler that has already been resolved to a tenant.
type orgHandler func(w http.ResponseWriter, r *http.Request, orgID string)

// withOrg extracts the tenant from the X-Org-ID header. Requests without one
// are rejected before reaching the handler.
func (s *Server) withOrg(next orgHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.Header.Get("X-Org-ID")
		if orgID == "" {
			writeError(w, http.StatusUnauthorized, "missing_org", "X-Org-ID header is required")
			return
		}
		next(w, r, orgID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
