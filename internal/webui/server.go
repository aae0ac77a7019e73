// Package webui serves the survey dashboard: an HTML page with a filter form
// and server-rendered charts, plus a small JSON API over the same filtered
// views.
//
// Routes:
//
//	GET  /                     → dashboard page
//	GET  /api/summary          → headline metrics for the filtered subset
//	GET  /api/report           → every breakdown for the filtered subset
//	GET  /api/options          → selector options from the loaded dataset
//	GET  /charts/:file         → age|gender|country|remote as .svg or .png
//	POST /api/reload           → reload the dataset from its source
//	GET  /healthz              → 200 once a dataset is loaded
package webui

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveydash/internal/dataset"
)

// Config controls server startup.
type Config struct {
	Addr string
	// ShutdownTimeout bounds graceful shutdown. Zero means 5s.
	ShutdownTimeout time.Duration
}

// Server wires the dataset store to HTTP.
type Server struct {
	cfg    Config
	store  *dataset.Store
	log    *zap.Logger
	tmpl   *template.Template
	engine *gin.Engine
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config, store *dataset.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		cfg:   cfg,
		store: store,
		log:   log,
		tmpl:  template.Must(template.New("index").Funcs(templateFuncs).Parse(indexHTML)),
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(s.log), gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.GET("/charts/:file", s.handleChart)

	api := r.Group("/api")
	api.GET("/summary", s.handleSummary)
	api.GET("/report", s.handleReport)
	api.GET("/options", s.handleOptions)
	api.POST("/reload", s.handleReload)

	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// zapLoggerMiddleware logs one line per request.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

//go:embed index.tmpl.html
var indexHTML string
