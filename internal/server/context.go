package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/proposal"
)

// Options configures a ServerContext.
type Options struct {
	Service *proposal.Service
	Config  *config.Config
	Logger  *slog.Logger

	// Instrumentation and AuditLogger are optional.
	Instrumentation *instrumentation.Provider
	AuditLogger     *instrumentation.AuditLogger

	Version string
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	service         *proposal.Service
	config          *config.Config
	logger          *slog.Logger
	instrumentation *instrumentation.Provider
	auditLogger     *instrumentation.AuditLogger
	version         string

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Service == nil {
		return nil, errors.New("scheduling service is required")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		service:         opts.Service,
		config:          opts.Config,
		logger:          opts.Logger,
		instrumentation: opts.Instrumentation,
		auditLogger:     opts.AuditLogger,
		version:         opts.Version,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the scheduling service.
func (sc *ServerContext) Service() *proposal.Service {
	return sc.service
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Version returns the build version.
func (sc *ServerContext) Version() string {
	return sc.version
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instrumentation == nil || !sc.instrumentation.Enabled() {
		return nil
	}
	return sc.instrumentation.Metrics()
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
