package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"runbox/config"
)

// Status classifies the outcome of a run.
type Status string

const (
	// StatusSuccess means the process exited with return code 0.
	StatusSuccess Status = "success"
	// StatusError means the process exited with a nonzero return code,
	// or was killed by a signal the engine did not send.
	StatusError Status = "error"
	// StatusTimeout means the deadline elapsed and the process group
	// was forcibly terminated.
	StatusTimeout Status = "timeout"
	// StatusFailed means an engine-level failure not attributable to
	// user code (spawn failure, workspace failure, internal panic).
	StatusFailed Status = "failed"
)

// Validation sentinels, surfaced by Execute before any process is
// spawned. They are distinct from the four result statuses.
var (
	ErrEmptyCode         = errors.New("code must not be empty")
	ErrTimeoutOutOfRange = errors.New("timeout outside configured bounds")
)

// Request carries one code execution request.
type Request struct {
	// Code is the source handed to the interpreter.
	Code string
	// Timeout bounds wall-clock execution time. Zero selects the
	// configured default; any other value must fall within the
	// configured [min, max] or the request is rejected.
	Timeout time.Duration
	// MaxMemoryBytes overrides the configured memory ceiling when
	// positive.
	MaxMemoryBytes int64
	// MaxCPUTime overrides the configured CPU-time ceiling when
	// positive.
	MaxCPUTime time.Duration
}

// Result is the immutable outcome of a run.
type Result struct {
	Status   Status
	Stdout   string
	Stderr   string
	Duration time.Duration
	// ReturnCode is set iff the process exited on its own. It is nil
	// for timeouts, for engine failures, and for signal-killed runs.
	ReturnCode *int
}

// Config holds the process-wide execution defaults. It is constructed
// once at startup and shared read-only by all concurrent runs.
type Config struct {
	Interpreter        string
	DefaultTimeout     time.Duration
	MinTimeout         time.Duration
	MaxTimeout         time.Duration
	MaxMemoryBytes     int64
	MaxCPUTime         time.Duration
	MaxConcurrent      int
	WorkspaceIsolation bool
	WorkspaceDir       string
	GracePeriod        time.Duration
}

// Executor defines the execution seam other layers depend on.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Engine runs untrusted code in isolated subprocesses under timing,
// resource, and concurrency bounds.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	gate   *gate
}

// New creates an Engine from the application configuration.
func New(logger *zap.Logger, cfg *config.Config) (*Engine, error) {
	return NewWithConfig(logger, Config{
		Interpreter:        cfg.Engine.Interpreter,
		DefaultTimeout:     cfg.DefaultTimeout(),
		MinTimeout:         cfg.MinTimeout(),
		MaxTimeout:         cfg.MaxTimeout(),
		MaxMemoryBytes:     cfg.MaxMemoryBytes(),
		MaxCPUTime:         cfg.MaxCPUTime(),
		MaxConcurrent:      cfg.Engine.MaxConcurrent,
		WorkspaceIsolation: cfg.Engine.WorkspaceIsolation,
		WorkspaceDir:       cfg.Engine.WorkspaceDir,
		GracePeriod:        cfg.GracePeriod(),
	})
}

// NewWithConfig creates an Engine from an explicit Config.
func NewWithConfig(logger *zap.Logger, cfg Config) (*Engine, error) {
	if cfg.Interpreter == "" {
		return nil, fmt.Errorf("interpreter is required")
	}
	if cfg.MinTimeout <= 0 {
		return nil, fmt.Errorf("min timeout must be positive, got: %s", cfg.MinTimeout)
	}
	if cfg.MaxTimeout < cfg.MinTimeout {
		return nil, fmt.Errorf("max timeout must be >= min timeout, got: %s < %s", cfg.MaxTimeout, cfg.MinTimeout)
	}
	if cfg.DefaultTimeout < cfg.MinTimeout || cfg.DefaultTimeout > cfg.MaxTimeout {
		return nil, fmt.Errorf("default timeout must be within [%s, %s], got: %s",
			cfg.MinTimeout, cfg.MaxTimeout, cfg.DefaultTimeout)
	}
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent must be positive, got: %d", cfg.MaxConcurrent)
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = time.Second
	}

	logger.Info("execution engine initialized",
		zap.String("interpreter", cfg.Interpreter),
		zap.Duration("default_timeout", cfg.DefaultTimeout),
		zap.Int64("max_memory_bytes", cfg.MaxMemoryBytes),
		zap.Duration("max_cpu_time", cfg.MaxCPUTime),
		zap.Int("max_concurrent", cfg.MaxConcurrent),
		zap.Bool("workspace_isolation", cfg.WorkspaceIsolation),
		zap.Bool("limits_enforced", limitsEnforced()),
	)

	return &Engine{
		cfg:    cfg,
		logger: logger,
		gate:   newGate(cfg.MaxConcurrent),
	}, nil
}

// LimitsEnforced reports whether the memory/CPU ceilings are actually
// enforced on this platform. Where the platform offers no per-process
// limit support the engine applies no ceiling and reports false rather
// than implying a guarantee it cannot keep.
func (e *Engine) LimitsEnforced() bool {
	return limitsEnforced()
}

// Execute runs the requested code and returns its captured output.
// The only errors returned are pre-flight validation rejections
// (ErrEmptyCode, ErrTimeoutOutOfRange); every runtime failure mode is
// captured in the Result status.
func (e *Engine) Execute(ctx context.Context, req Request) (Result, error) {
	timeout, err := e.resolveTimeout(req.Timeout)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return Result{}, ErrEmptyCode
	}

	runID := xid.New().String()
	log := e.logger.With(zap.String("run_id", runID))
	log.Info("execution requested", zap.Duration("timeout", timeout))

	if err := e.gate.acquire(ctx); err != nil {
		log.Warn("canceled while waiting for execution slot", zap.Error(err))
		return Result{Status: StatusFailed, Stderr: "execution canceled while queued"}, nil
	}
	defer e.gate.release()

	res := e.runOnce(ctx, log, runID, req, timeout)

	log.Info("execution completed",
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// runOnce owns one run's lifecycle: workspace creation, process
// supervision, and teardown. It never panics out; an internal panic is
// converted to a failed result.
func (e *Engine) runOnce(ctx context.Context, log *zap.Logger, runID string, req Request, timeout time.Duration) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during execution", zap.Any("panic", r))
			res = Result{
				Status: StatusFailed,
				Stderr: fmt.Sprintf("internal execution failure: %v", r),
			}
		}
	}()

	var ws *workspace
	if e.cfg.WorkspaceIsolation {
		w, err := newWorkspace(e.cfg.WorkspaceDir, runID)
		if err != nil {
			log.Error("workspace creation failed", zap.Error(err))
			return Result{
				Status: StatusFailed,
				Stderr: fmt.Sprintf("workspace creation failed: %v", err),
			}
		}
		ws = w
		defer ws.destroy(log)
	}

	return e.runProcess(ctx, log, req, timeout, ws)
}

func (e *Engine) resolveTimeout(requested time.Duration) (time.Duration, error) {
	if requested == 0 {
		return e.cfg.DefaultTimeout, nil
	}
	if requested < e.cfg.MinTimeout || requested > e.cfg.MaxTimeout {
		return 0, fmt.Errorf("%w: %s not in [%s, %s]",
			ErrTimeoutOutOfRange, requested, e.cfg.MinTimeout, e.cfg.MaxTimeout)
	}
	return requested, nil
}

// limitsFor resolves the effective resource ceilings for one run.
func (e *Engine) limitsFor(req Request) limits {
	lim := limits{
		maxMemoryBytes: e.cfg.MaxMemoryBytes,
		maxCPUTime:     e.cfg.MaxCPUTime,
	}
	if req.MaxMemoryBytes > 0 {
		lim.maxMemoryBytes = req.MaxMemoryBytes
	}
	if req.MaxCPUTime > 0 {
		lim.maxCPUTime = req.MaxCPUTime
	}
	return lim
}
