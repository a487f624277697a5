// Package httpapi exposes the ranking and submission services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ahrav/go-standings/internal/application"
	"github.com/ahrav/go-standings/internal/domain"
)

// RankingReader computes leaderboards.
type RankingReader interface {
	Ranking(ctx context.Context, tournamentID string, filter application.FilterOptions) (application.RankingResult, error)
}

// Submitter records and deactivates evaluations.
type Submitter interface {
	Submit(ctx context.Context, req application.SubmitRequest) (domain.Evaluation, error)
	Deactivate(ctx context.Context, evaluationID string) error
}

// Server routes HTTP requests to the services.
type Server struct {
	rankings    RankingReader
	submissions Submitter
	gatherer    prometheus.Gatherer
	logger      zerolog.Logger
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer sets the registry served on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer builds the router.
func NewServer(rankings RankingReader, submissions Submitter, opts ...Option) *Server {
	s := &Server{
		rankings:    rankings,
		submissions: submissions,
		gatherer:    prometheus.DefaultGatherer,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/ranking", s.handleRanking)
		r.Post("/evaluations", s.handleSubmit)
	})
	r.Delete("/evaluations/{evaluationID}", s.handleDeactivate)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{"status": "ok"})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := application.FilterOptions{Shift: q.Get("shift"), Grade: q.Get("grade")}

	res, err := s.rankings.Ranking(r.Context(), chi.URLParam(r, "tournamentID"), filter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req application.SubmitRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tournamentID := chi.URLParam(r, "tournamentID")
	if req.TournamentID != "" && req.TournamentID != tournamentID {
		s.errorResponse(w, http.StatusBadRequest, "tournament_id does not match the path")
		return
	}
	req.TournamentID = tournamentID

	stored, err := s.submissions.Submit(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	status := http.StatusOK
	if stored.Version == 1 {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, stored)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.submissions.Deactivate(r.Context(), chi.URLParam(r, "evaluationID")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
