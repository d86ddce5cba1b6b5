// Package server exposes the conversion engine over an HTTP/JSON API for a
// browser front-end.
//
// Every requester gets a session, identified by a cookie, with at most one
// conversion in flight. All sessions share one engine, so learned patterns
// and statistics are global.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ZaguanLabs/codeshift"
)

// Server is the HTTP API.
type Server struct {
	engine     *codeshift.Engine
	sessions   *SessionManager
	models     codeshift.ModelLister
	store      codeshift.StateStore
	logger     logrus.FieldLogger
	router     *gin.Engine
	sessionTTL time.Duration
	staticDir  string
}

// Option configures a Server.
type Option func(*Server)

// WithModelLister sets the backend probed by /api/models and /healthz.
func WithModelLister(l codeshift.ModelLister) Option {
	return func(s *Server) {
		s.models = l
	}
}

// WithStore sets the state store probed by /healthz.
func WithStore(st codeshift.StateStore) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// WithStaticDir serves files from dir for unmatched routes.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// New creates a Server over engine.
func New(engine *codeshift.Engine, opts ...Option) *Server {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	s.sessions = NewSessionManager(engine, s.sessionTTL)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.logger), requestLogger(s.logger))

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api", sessionMiddleware(s.sessions))
	{
		api.POST("/convert", s.handleConvert)
		api.GET("/languages", s.handleLanguages)
		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleUpdateSettings)
		api.GET("/stats", s.handleStats)
		api.GET("/history", s.handleHistory)
		api.POST("/reset", s.handleReset)
		api.GET("/models", s.handleModels)
		api.GET("/patterns/export", s.handleExportPatterns)
		api.POST("/patterns/import", s.handleImportPatterns)
	}

	if s.staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.staticDir))))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.WithField("addr", addr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.sessions.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := s.sessions.Sweep(); n > 0 {
					s.logger.WithField("removed", n).Debug("Swept idle sessions")
				}
			}
		}
	})
	return g.Wait()
}
