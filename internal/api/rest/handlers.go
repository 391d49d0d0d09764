package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/news"
	"github.com/fortuna/gridiron/internal/risk"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/timeline"
	"github.com/gorilla/mux"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db          *store.Database
	repo        *repository.InjuryRepository
	orch        *scheduler.Orchestrator
	estimator   *timeline.Estimator
	newsSvc     *news.Service
	currentWeek int
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, repo *repository.InjuryRepository, orch *scheduler.Orchestrator, estimator *timeline.Estimator, newsSvc *news.Service, currentWeek int) *Handler {
	return &Handler{
		db:          db,
		repo:        repo,
		orch:        orch,
		estimator:   estimator,
		newsSvc:     newsSvc,
		currentWeek: currentWeek,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]string{
		"status":  status,
		"service": "gridiron",
		"version": "1.0.0",
	})
}

// GetInjuries returns all currently open injuries
func (h *Handler) GetInjuries(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.ListOpenEvents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injuries", err)
		return
	}
	if events == nil {
		events = []*store.InjuryEvent{}
	}

	respondJSON(w, http.StatusOK, events)
}

// GetInjury returns a player's current open injury
func (h *Handler) GetInjury(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]

	event, err := h.repo.GetOpenEvent(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injury", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "Player has no open injury", nil)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// GetPlayerRisk scores re-injury risk for a currently injured player
func (h *Handler) GetPlayerRisk(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]

	event, err := h.repo.GetOpenEvent(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injury", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "Player has no open injury", nil)
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), playerID)
	if err != nil {
		profile = store.EmptyProfile(playerID)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id":   playerID,
		"player_name": event.PlayerName,
		"risk":        risk.Score(event, profile),
	})
}

// GetPlayerTimeline estimates the player's return timeline
func (h *Handler) GetPlayerTimeline(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]

	event, err := h.repo.GetOpenEvent(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injury", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "Player has no open injury", nil)
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), playerID)
	if err != nil {
		profile = store.EmptyProfile(playerID)
	}

	var signal *news.Signal
	if h.newsSvc != nil {
		signal = h.newsSvc.SignalFor(r.Context(), event.PlayerName, event.Team)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id":   playerID,
		"player_name": event.PlayerName,
		"timeline":    h.estimator.Estimate(event, profile, h.currentWeek, signal),
	})
}

// GetPlayerHistory returns a player's complete injury history
func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]

	events, err := h.repo.GetHistory(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch history", err)
		return
	}
	if events == nil {
		events = []*store.InjuryEvent{}
	}

	profile, err := h.repo.GetProfile(r.Context(), playerID)
	if err != nil {
		profile = store.EmptyProfile(playerID)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": playerID,
		"events":    events,
		"profile":   profile,
	})
}

// GetReport returns the most recent cycle report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, _, lastErr := h.orch.LastReport()
	if report == nil {
		respondError(w, http.StatusNotFound, "No check cycle has completed yet", lastErr)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetSchedulerStatus reports last run time and outcome
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	report, ranAt, lastErr := h.orch.LastReport()

	status := map[string]interface{}{
		"last_run": nil,
		"healthy":  lastErr == nil,
	}
	if !ranAt.IsZero() {
		status["last_run"] = ranAt.Format(time.RFC3339)
	}
	if lastErr != nil {
		status["last_error"] = lastErr.Error()
	}
	if report != nil {
		status["total_injured"] = report.TotalInjured
		status["alerts"] = len(report.Alerts)
	}
	if h.newsSvc != nil {
		count, fetchedAt := h.newsSvc.ItemCount()
		status["news_items"] = count
		if !fetchedAt.IsZero() {
			status["news_fetched_at"] = fetchedAt.Format(time.RFC3339)
		}
	}

	respondJSON(w, http.StatusOK, status)
}

// TriggerCheck runs an injury check cycle immediately
func (h *Handler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.orch.TriggerCheck(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Check cycle failed", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
