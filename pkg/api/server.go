// Package api exposes the recipe reports and harvester metrics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"recipe-harvest/pkg/db"
	"recipe-harvest/pkg/metrics"
)

// Server wires HTTP handlers to a report backend.
type Server struct {
	router   chi.Router
	reporter db.Reporter
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(reporter db.Reporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		reporter: reporter,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.summary)
		r.Get("/avg-ingredients", s.avgIngredients)
		r.Get("/avg-steps", s.avgSteps)
		r.Get("/most-portions", s.mostPortions)
		r.Get("/top-author", s.topAuthor)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) avgIngredients(w http.ResponseWriter, r *http.Request) {
	avg, err := s.reporter.AvgIngredients(r.Context())
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"avg_ingredients": avg})
}

func (s *Server) avgSteps(w http.ResponseWriter, r *http.Request) {
	avg, err := s.reporter.AvgSteps(r.Context())
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"avg_steps": avg})
}

func (s *Server) mostPortions(w http.ResponseWriter, r *http.Request) {
	ref, err := s.reporter.MostPortions(r.Context())
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) topAuthor(w http.ResponseWriter, r *http.Request) {
	top, err := s.reporter.TopAuthor(r.Context())
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// Summary is the combined report served at /reports/
type Summary struct {
	AvgIngredients int            `json:"avg_ingredients"`
	AvgSteps       float64        `json:"avg_steps"`
	MostPortions   db.RecipeRef   `json:"most_portions"`
	TopAuthor      db.AuthorCount `json:"top_author"`
}

// BuildSummary runs every report
func BuildSummary(ctx context.Context, reporter db.Reporter) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.AvgIngredients, err = reporter.AvgIngredients(ctx); err != nil {
		return Summary{}, err
	}
	if sum.AvgSteps, err = reporter.AvgSteps(ctx); err != nil {
		return Summary{}, err
	}
	if sum.MostPortions, err = reporter.MostPortions(ctx); err != nil {
		return Summary{}, err
	}
	if sum.TopAuthor, err = reporter.TopAuthor(ctx); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := BuildSummary(r.Context(), s.reporter)
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) writeReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrNoRecipes) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("Report query failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "report query failed")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
