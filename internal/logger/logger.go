package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

/* ------------------------------------------------------------------ *
|  1. Package‑level state                                             |
* -------------------------------------------------------------------*/

var (
	mu        sync.Mutex
	installed bool // never reset: the process gets one logger
	sinks     []sink
	filter    *filterCore
	resolved  *config.LoggingConfig
	undo      []func()

	root   atomic.Pointer[zap.Logger]
	active atomic.Bool
)

/* ------------------------------------------------------------------ *
|  2. Install / Shutdown                                              |
* -------------------------------------------------------------------*/

// Install builds one core per destination in cfg, tees them behind the filter and
// makes the result the process-wide logger, including zap.L() and the standard
// library logger. It succeeds once per process; later calls return an install error
// and leave the installed logger untouched. If a sink cannot be opened nothing is installed.
func Install(cfg *config.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if installed {
		return apperrors.InstallError(apperrors.CodeAlreadyInstalled, nil)
	}

	built, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	cores := make([]zapcore.Core, 0, len(built))
	for _, s := range built {
		cores = append(cores, s.core)
	}

	fc := newFilterCore(zapcore.NewTee(cores...), cfg.Level, cfg.Directives)
	opts := []zap.Option{
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(errorOutput),
	}
	if cfg.Version != "" {
		opts = append(opts, zap.Fields(zap.String("version", cfg.Version)))
	}
	l := zap.New(fc, opts...)

	sinks, filter, resolved = built, fc, cfg
	root.Store(l)
	undo = []func(){zap.ReplaceGlobals(l), zap.RedirectStdLog(l)}
	installed = true
	active.Store(true)
	metrics.RegisterMetrics()
	metrics.Installed.Set(1)

	for _, w := range cfg.Warnings {
		l.Warn(w)
	}
	l.Debug("logger installed",
		zap.String("app", cfg.AppName),
		zap.Stringer("destinations", cfg.Destinations),
		zap.String("level", config.LevelString(cfg.Level)),
	)
	return nil
}

// Shutdown flushes and closes every sink. The process keeps its "installed"
// state, so Install still refuses to run again afterwards.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if !active.Load() {
		return apperrors.InstallError(apperrors.CodeNotInstalled, nil)
	}
	l := root.Load()
	active.Store(false)

	var syncErr error
	if err := l.Sync(); err != nil && !isPathErr(err) {
		syncErr = err
	}
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	undo = nil
	if err := closeSinks(sinks); err != nil {
		return fmt.Errorf("close sinks: %w", err)
	}
	sinks = nil
	metrics.Installed.Set(0)
	return syncErr
}

// Installed reports whether Install has succeeded in this process.
func Installed() bool {
	mu.Lock()
	defer mu.Unlock()
	return installed
}

// Config returns the configuration the installed logger was built from, or nil.
func Config() *config.LoggingConfig {
	mu.Lock()
	defer mu.Unlock()
	return resolved
}

/* ------------------------------------------------------------------ *
|  3. Helpers                                                         |
* -------------------------------------------------------------------*/

// Syncing a terminal or pipe fails with a path error that says nothing about lost records.
func isPathErr(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}

// L returns the installed logger, or a no-op logger before Install and after Shutdown.
func L() *zap.Logger {
	if !active.Load() {
		return zap.NewNop()
	}
	return root.Load()
}

/* ------------------------------------------------------------------ *
|  4. Context helpers & child loggers                                 |
* -------------------------------------------------------------------*/

type loggerKey struct{}

// WithLogger attaches a *zap.Logger to a context.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or the installed logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return L()
}

// New returns a component‑scoped child logger. The component name is the
// target that filter directives match against.
func New(component string) *zap.Logger {
	return L().Named(component)
}

/* ------------------------------------------------------------------ *
|  5. Convenience wrappers                                            |
* -------------------------------------------------------------------*/

func Trace(msg string, fields ...zap.Field) {
	if ce := L().Check(config.TraceLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

/* ------------------------------------------------------------------ *
|  6. Hot‑swap log‑level                                              |
* -------------------------------------------------------------------*/

// UpdateLevel changes the default level. Targeted filter directives keep theirs.
func UpdateLevel(lvl string) error {
	level, err := config.ParseLevel(lvl)
	if err != nil {
		return apperrors.ResolutionError("level", lvl, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !active.Load() {
		return apperrors.InstallError(apperrors.CodeNotInstalled, nil)
	}
	filter.level.SetLevel(level)
	return nil
}
