// Package server is the public competition site. It serves the static
// content sections and proxies the public parts of the backend: news and
// the team finder. It never uses the admin session.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/existflow/scic/internal/content"
	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
)

// Backend is the public part of the backend API
type Backend interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListAcceptedMembers(ctx context.Context) ([]model.Member, error)
	Register(ctx context.Context, r form.Registration) (*model.Member, error)
}

// Server is the public site server
type Server struct {
	backend Backend
	site    *content.Site
	log     *logger.Logger
	metrics *metrics
	echo    *echo.Echo
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegistry registers the HTTP metrics on reg instead of a private registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = newMetrics(reg)
	}
}

// New creates a new server
func New(backend Backend, site *content.Site, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		site:    site,
		log:     logger.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}

	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(s.metrics.middleware)
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(s.metrics.handler()))

	api := e.Group("/api")

	api.GET("/content", s.handleContent)
	api.GET("/content/:section", s.handleContentSection)

	api.GET("/news", s.handleNewsList)
	api.GET("/news/:id", s.handleNewsShow)

	api.GET("/find-team", s.handleFindTeam)
	api.POST("/find-team", s.handleFindTeamRegister)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
