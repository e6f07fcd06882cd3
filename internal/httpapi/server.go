// Package httpapi serves feeds, swipes and model operations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/aptmatch/internal/config"
	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

// requestTimeout bounds every handler; training has its own configured timeout
const requestTimeout = 60 * time.Second

// Server is the HTTP API
type Server struct {
	db      *database.DB
	tracker *tracker.Tracker
	config  *config.Config
	log     zerolog.Logger
}

// New creates a Server
func New(db *database.DB, tr *tracker.Tracker, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		db:      db,
		tracker: tr,
		config:  cfg,
		log:     log.With().Str("component", "httpapi").Logger(),
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listings", s.listListings)
		r.Get("/listings/{listingID}", s.getListing)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/feed", s.feed)
			r.Post("/swipes", s.recordSwipe)
			r.Get("/swipes", s.listSwipes)
			r.Post("/session/end", s.endSession)
			r.Post("/train", s.train)
			r.Get("/model", s.modelReport)
			r.Get("/weights/suggested", s.suggestWeights)
			r.Get("/learned", s.learned)
			r.Get("/explain/{listingID}", s.explain)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info().Msg("shutting down http api")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	s.tracker.Wait()
	return nil
}
