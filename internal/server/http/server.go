package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"aria/internal/config"
	"aria/internal/logging"
	"aria/internal/server/app"
	"aria/internal/session"
	"aria/internal/session/archive"
)

// Server is the HTTP server hosting the consolidation API.
type Server struct {
	cfg    *config.Config
	srv    *http.Server
	logger logging.Logger
}

// NewServer assembles the session manager, broadcaster, and router into a
// runnable server.
func NewServer(cfg *config.Config) (*Server, error) {
	runs, err := session.NewManager(cfg.Runs.RetainedRuns, logging.NewComponentLogger("SessionManager"))
	if err != nil {
		return nil, err
	}
	if cfg.Runs.ArchiveDir != "" {
		store, err := archive.New(cfg.Runs.ArchiveDir, logging.NewComponentLogger("RunArchive"))
		if err != nil {
			return nil, err
		}
		runs.UseArchive(store)
	}
	broadcaster := app.NewViewBroadcaster(cfg.Runs.ClientBuffer, logging.NewComponentLogger("ViewBroadcaster"))
	engine := NewRouter(cfg, runs, broadcaster, time.Now())

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logging.NewComponentLogger("Server"),
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
