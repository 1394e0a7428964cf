// Package dashboard serves the JSON API behind the tracking dashboard:
// workbook upload, reports, document and handler maintenance.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"gorm.io/gorm"
)

// ImportRunner is the subset of importer.Runner the API drives.
type ImportRunner interface {
	Run(ctx context.Context, src importer.Source) (importer.Result, error)
	Busy() bool
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB     *gorm.DB
	Runner ImportRunner
	Config *config.Config
	Logger *logrus.Logger
	Port   int
	Out    io.Writer
}

type server struct {
	db     *gorm.DB
	store  *store.Store
	runner ImportRunner
	cfg    *config.Config
	log    *logrus.Entry

	// pollInterval paces the import event stream.
	pollInterval time.Duration
	heartbeat    time.Duration
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("dashboard: db is required")
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("dashboard: import runner is required")
	}
	if opts.Config == nil {
		cfg, err := config.Parse(nil)
		if err != nil {
			return nil, fmt.Errorf("dashboard: default config: %w", err)
		}
		opts.Config = cfg
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	s := &server{
		db:           opts.DB,
		store:        store.New(opts.DB),
		runner:       opts.Runner,
		cfg:          opts.Config,
		log:          opts.Logger.WithField("component", "dashboard"),
		pollInterval: 3 * time.Second,
		heartbeat:    15 * time.Second,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.MaxMultipartMemory = opts.Config.Server.MaxUploadMB << 20

	registerRoutes(router, s)
	return router, nil
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard API running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through logrus.
func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).Round(time.Millisecond),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
