package ui

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"instviz/internal/config"
	"instviz/internal/errors"
	"instviz/internal/logging"
	"instviz/internal/metrics"
	"instviz/internal/report"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Deps are the collaborators a Server needs
type Deps struct {
	Builder *report.Builder
	Store   report.Store
	Metrics metrics.Provider
	Logger  *logging.Logger
}

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	cfg       *config.Config
	builder   *report.Builder
	store     report.Store
	metrics   metrics.Provider
	logger    *logging.Logger
	intro     template.HTML
	http      *http.Server
}

// NewServer creates the dashboard server with its routes in place
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Builder == nil || deps.Store == nil {
		return nil, errors.InternalError("dashboard needs a report builder and store")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewProvider(false)
	}
	if deps.Logger == nil {
		deps.Logger = logging.DefaultLogger
	}

	gin.SetMode(cfg.Server.GinMode)
	s := &Server{
		router:  gin.New(),
		cfg:     cfg,
		builder: deps.Builder,
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		intro:   renderMarkdown(cfg.Dashboard.Intro),
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = tmpl

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// renderMarkdown turns the intro copy into HTML; raw HTML in the source is dropped
func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(src), p, r))
}

// setupMiddleware configures Gin middleware and static files
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(metrics.Middleware(s.metrics))
	// multipart parsing spills anything over this to disk
	s.router.MaxMultipartMemory = 8 << 20

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return errors.Wrap(err, "failed to create static filesystem")
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)

	reports := s.router.Group("/reports/:id")
	reports.GET("", s.handleReport)
	reports.GET("/charts/:chart", s.handleChartPNG)
	reports.GET("/composite.png", s.handleCompositePNG)
	reports.GET("/workbook.xlsx", s.handleWorkbook)

	s.router.GET("/api/reports/:id", s.handleReportJSON)
	s.router.GET("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting Institution Visual Analysis on http://localhost%s", s.cfg.Addr())
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down dashboard")
	return s.http.Shutdown(shutdownCtx)
}
