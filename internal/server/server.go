package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"weatheralert/internal/detector"
	"weatheralert/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EvaluateRequest is a forecast window plus thresholds to try against it.
type EvaluateRequest struct {
	Thresholds models.ThresholdConfig `json:"thresholds"`
	Readings   []models.HourlyReading `json:"readings"`
	Timezone   string                 `json:"timezone,omitempty"`
}

// EvaluateResponse is what a run would have found; nothing is delivered.
type EvaluateResponse struct {
	Alert   models.AggregateAlert `json:"alert"`
	Alerted bool                  `json:"alerted"`
	Message string                `json:"message,omitempty"`
}

// Server represents the HTTP server
type Server struct {
	codes models.WeatherCodeTable
	loc   *time.Location
	mux   *http.ServeMux
	http  *http.Server
}

// NewServer creates the preview server. loc is the default zone for rendered times.
func NewServer(codes models.WeatherCodeTable, loc *time.Location) *Server {
	s := &Server{
		codes: codes,
		loc:   loc,
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/evaluate", s.handleEvaluate)
	s.mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handleEvaluate aggregates and composes the posted readings
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	loc := s.loc
	if req.Timezone != "" {
		l, err := time.LoadLocation(req.Timezone)
		if err != nil {
			http.Error(w, "Unknown timezone: "+req.Timezone, http.StatusBadRequest)
			return
		}
		loc = l
	}

	for i, reading := range req.Readings {
		if reading.Timestamp == 0 {
			http.Error(w, fmt.Sprintf("readings[%d]: timestamp is required", i), http.StatusBadRequest)
			return
		}
	}

	alert, err := detector.Aggregate(req.Readings, req.Thresholds, s.codes)
	if err != nil {
		if models.IsKind(err, models.ErrLookup) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.Printf("Evaluate failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	message, ok := detector.Compose(alert, loc)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EvaluateResponse{
		Alert:   alert,
		Alerted: ok,
		Message: message,
	})
}
