package api

import (
	"encoding/json"
	"net/http"

	"github.com/tcollier/portfolio-report/internal/models"
)

// Store is the subset of the history store the status API reads
type Store interface {
	GetLatestSnapshot() (*models.Snapshot, error)
	GetLatestDailyChange() (*models.DailyChange, error)
}

// StatusSource reports the most recent run, nil when none has completed
type StatusSource interface {
	LastRun() *models.RunStatus
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store  Store
	status StatusSource
}

// NewHandler creates a new Handler
func NewHandler(store Store, status StatusSource) *Handler {
	return &Handler{
		store:  store,
		status: status,
	}
}

// GetLatestSnapshot handles GET /snapshots/latest
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.GetLatestSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snap == nil {
		http.Error(w, "no snapshots recorded yet", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// GetLatestChange handles GET /changes/latest
func (h *Handler) GetLatestChange(w http.ResponseWriter, r *http.Request) {
	change, err := h.store.GetLatestDailyChange()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if change == nil {
		http.Error(w, "no daily changes recorded yet", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, change)
}

// GetLastRun handles GET /runs/last
func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	status := h.status.LastRun()
	if status == nil {
		http.Error(w, "no runs completed yet", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
