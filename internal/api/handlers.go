package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

const wakeSource = "api"

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Kinds:         []string{},
	}
	if s.deps.Kinds != nil {
		resp.Kinds = s.deps.Kinds.Kinds()
	}
	if s.deps.Jobs != nil {
		resp.Jobs = s.deps.Jobs.Jobs()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleWake handles POST /wake.
func (s *Server) handleWake(w http.ResponseWriter, r *http.Request) {
	if s.deps.Waker == nil {
		s.writeError(w, http.StatusServiceUnavailable, "session loop not running")
		return
	}
	queued := s.deps.Waker.Trigger(wakeSource)
	respondJSON(w, http.StatusAccepted, WakeResponse{Queued: queued})
}

// handleJournal handles GET /journal?limit=N.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		s.writeError(w, http.StatusServiceUnavailable, "journal not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.Journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read journal", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	respondJSON(w, http.StatusOK, JournalResponse{Entries: entries, Count: len(entries)})
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
