// Package dashboard serves the local admin dashboard: server-rendered pages
// over the content service, guarded by the shared session.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/folioadmin/folioadmin/internal/config"
	"github.com/folioadmin/folioadmin/internal/content"
	"github.com/folioadmin/folioadmin/internal/guard"
	"github.com/folioadmin/folioadmin/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Sessions is the part of the session store the dashboard drives.
type Sessions interface {
	session.Reader
	content.SessionWriter
	Logout() error
}

// Server represents the dashboard HTTP server
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	sessions  Sessions
	content   *content.Service
	templates *template.Template
}

// New creates a dashboard server.
func New(cfg *config.Config, sessions Sessions, svc *content.Service, zlog zerolog.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		config:    cfg,
		logger:    zlog.With().Str("component", "dashboard").Logger(),
		sessions:  sessions,
		content:   svc,
		templates: tmpl,
	}
	s.setupRouter()

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.SetHTMLTemplate(s.templates)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	if c, ok := corsConfig(s.config.Dashboard.AllowedOrigins); ok {
		s.router.Use(cors.New(c))
	}

	// Health check endpoint (no guard)
	s.router.GET("/health", s.healthCheck)

	publicOnly := guard.Middleware(guard.PublicOnly{HomePath: "/"}, s.sessions, s.logger)
	authOnly := guard.Middleware(guard.AuthenticatedOnly{LoginPath: "/login"}, s.sessions, s.logger)

	public := s.router.Group("/", s.sameOrigin(), publicOnly)
	{
		public.GET("/login", s.loginPage)
		public.POST("/login", s.login)
	}

	private := s.router.Group("/", s.sameOrigin(), authOnly)
	{
		private.GET("/", s.overview)
		private.POST("/logout", s.logout)

		private.GET("/manage/:resource", s.manageList)
		private.GET("/manage/:resource/:id", s.manageDetail)
		private.POST("/manage/:resource/:id/delete", s.manageDelete)

		private.GET("/manage-subscriber", s.subscriberPage)
		private.POST("/manage-subscriber", s.sendNewsletter)
	}

	s.router.NoRoute(s.notFound)
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}

	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c, true
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = s.logger.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Start serves on the configured address until ctx ends, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Dashboard.Addr

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard server: %w", err)
	}

	s.logger.Info().Msg("Dashboard shutdown complete")
	return nil
}
