package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/pillarmap-api/internal/ble"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/config"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/influxdb"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/logging"
	"github.com/nerrad567/pillarmap-api/internal/worker"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Database is the subset of database.DB the API needs for health and metrics.
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
	Driver() string
	Path() string
}

// ConnectionState reports whether an optional connection (MQTT) is up.
type ConnectionState interface {
	IsConnected() bool
}

// HealthChecker is an optional dependency that can report it is down.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LookupRecorder receives one sample per served API request.
type LookupRecorder interface {
	WriteLookupMetric(s influxdb.LookupSample)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	BLE     *ble.Service
	Workers *worker.Service

	// Optional. Leave nil (not a typed nil pointer) when absent.
	DB      Database
	MQTT    ConnectionState
	Lookups LookupRecorder

	// Checks are reported by /api/health under their map key. A failing
	// check degrades the service, it does not make it unavailable.
	Checks map[string]HealthChecker

	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes and middleware.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	ble       *ble.Service
	workers   *worker.Service
	db        Database
	mqtt      ConnectionState
	lookups   LookupRecorder
	checks    map[string]HealthChecker
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.BLE == nil {
		return nil, fmt.Errorf("ble service is required")
	}
	if deps.Workers == nil {
		return nil, fmt.Errorf("worker service is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		ble:       deps.BLE,
		workers:   deps.Workers,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		lookups:   deps.Lookups,
		checks:    deps.Checks,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; the server can be stopped
// with Close().
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
