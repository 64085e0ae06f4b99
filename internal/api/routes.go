package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all status API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Read-only run status routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/snapshots/latest", handler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/changes/latest", handler.GetLatestChange).Methods("GET")
	api.HandleFunc("/runs/last", handler.GetLastRun).Methods("GET")

	return r
}
