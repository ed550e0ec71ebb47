package rest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/metrics"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/store/repository"
)

// Server exposes run status and metrics over HTTP.
type Server struct {
	port   int
	server *http.Server
}

func NewServer(port int, runs *repository.RunRepository, m *metrics.FactoryMetrics) *Server {
	router := mux.NewRouter()

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	handler := NewHandler(runs)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/runs/latest", handler.GetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{runId}/results", handler.GetRunResults).Methods("GET")

	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods("GET")
	}

	return &Server{
		port: port,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	log.Printf("[rest] Starting status server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[rest] Shutting down status server")
	return s.server.Shutdown(ctx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[rest] %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[rest] ⚠️ panic serving %s: %v", r.URL.Path, err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
