package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwhitfield/alphascore/internal/api/handlers"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(scoreHandler *handlers.ScoreHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check and Prometheus scrape endpoint
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/models", scoreHandler.ListModels).Methods("GET")
	api.HandleFunc("/models/{id}", scoreHandler.GetModel).Methods("GET")
	api.HandleFunc("/runs", scoreHandler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/latest", scoreHandler.GetLatestRun).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "alphascore-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
