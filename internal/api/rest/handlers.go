package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/store/repository"
)

type Handler struct {
	runs *repository.RunRepository
}

func NewHandler(runs *repository.RunRepository) *Handler {
	return &Handler{runs: runs}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "feed-factory",
	})
}

// GetLatestRun returns the most recent provisioning run, if any.
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "run history not configured")
		return
	}

	run, err := h.runs.LatestRun(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}
	if run == nil {
		h.respondError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// GetRunResults returns the per-feed results recorded for a run.
func (h *Handler) GetRunResults(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.respondError(w, http.StatusServiceUnavailable, "run history not configured")
		return
	}

	runID := mux.Vars(r)["runId"]
	results, err := h.runs.ResultsForRun(r.Context(), runID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load run results")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"runId":   runID,
		"count":   len(results),
		"results": results,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
