// Package observability is cmd/crawlservd's health/readiness/metrics
// HTTP surface, adapted from the teacher's internal/observability.Server
// onto *store.DB's pgxpool instead of the teacher's *db.DB.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server exposes /healthz, /readyz and /metrics on its own port,
// independent of internal/api's command channel.
type Server struct {
	db     *store.DB
	port   int
	logger *zerolog.Logger
}

// NewServer builds a Server. db may be nil, in which case /readyz
// always reports healthy (used by tests and by any future in-memory
// store.DB substitute).
func NewServer(db *store.DB, port int, logger *zerolog.Logger) *Server {
	return &Server{db: db, port: port, logger: logger}
}

// Start blocks serving until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.db != nil {
			if err := s.db.Pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, "DB error: %v", err)

				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("observability server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
