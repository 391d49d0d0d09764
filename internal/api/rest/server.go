package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/gridiron/internal/news"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/timeline"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, repo *repository.InjuryRepository, orch *scheduler.Orchestrator, estimator *timeline.Estimator, newsSvc *news.Service, currentWeek int) *Server {
	handler := NewHandler(db, repo, orch, estimator, newsSvc, currentWeek)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Injuries
	api.HandleFunc("/injuries", handler.GetInjuries).Methods("GET")
	api.HandleFunc("/injuries/{playerID}", handler.GetInjury).Methods("GET")

	// Players
	api.HandleFunc("/players/{playerID}/risk", handler.GetPlayerRisk).Methods("GET")
	api.HandleFunc("/players/{playerID}/timeline", handler.GetPlayerTimeline).Methods("GET")
	api.HandleFunc("/players/{playerID}/history", handler.GetPlayerHistory).Methods("GET")

	// Monitoring
	api.HandleFunc("/report", handler.GetReport).Methods("GET")
	api.HandleFunc("/scheduler/status", handler.GetSchedulerStatus).Methods("GET")
	api.HandleFunc("/check", handler.TriggerCheck).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
