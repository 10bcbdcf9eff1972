package logger

import (
	"errors"
	"os"

	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/metrics"
	"go.uber.org/zap/zapcore"
)

// consoleOutput is where the console sink writes.
var consoleOutput zapcore.WriteSyncer = zapcore.Lock(os.Stdout)

// errorOutput receives sink failures that cannot be logged through the sinks themselves.
var errorOutput zapcore.WriteSyncer = zapcore.Lock(os.Stderr)

// sink is one installed destination: its core and how to release what it holds.
type sink struct {
	name  string
	core  zapcore.Core
	close func() error
}

// everything reaches the sinks; filterCore is the only gate
var sinkEnabler = config.TraceLevel

// buildSinks opens one sink per destination. If any sink fails, those already
// opened are closed again and nothing is returned.
func buildSinks(cfg *config.LoggingConfig) ([]sink, error) {
	var built []sink
	fail := func(err error) ([]sink, error) {
		_ = closeSinks(built)
		return nil, err
	}

	if cfg.Destinations.Has(config.Console) {
		s, err := newConsoleSink(cfg)
		if err != nil {
			return fail(err)
		}
		built = append(built, s)
	}
	if cfg.Destinations.Has(config.File) {
		s, err := newFileSink(cfg)
		if err != nil {
			return fail(err)
		}
		built = append(built, s)
	}
	if cfg.Destinations.Has(config.Server) && cfg.Server != nil {
		s, err := newServerSink(cfg)
		if err != nil {
			return fail(err)
		}
		built = append(built, s)
	}
	if len(built) == 0 {
		return nil, apperrors.InstallError(apperrors.CodeSinkOpen, errors.New("no sink could be built"))
	}
	return built, nil
}

func closeSinks(sinks []sink) error {
	var errs []error
	for _, s := range sinks {
		if s.close == nil {
			continue
		}
		if err := s.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newConsoleSink(cfg *config.LoggingConfig) (sink, error) {
	enc, err := buildEncoder(cfg.Format, true)
	if err != nil {
		return sink{}, apperrors.InstallError(apperrors.CodeSinkOpen, err)
	}
	core := zapcore.NewCore(enc, consoleOutput, sinkEnabler)
	return sink{
		name: metrics.SinkConsole,
		core: &countingCore{Core: core, sink: metrics.SinkConsole},
	}, nil
}

// countingCore records every write in the per-sink Prometheus counters.
type countingCore struct {
	zapcore.Core
	sink string
}

func (c *countingCore) With(fields []zapcore.Field) zapcore.Core {
	return &countingCore{Core: c.Core.With(fields), sink: c.sink}
}

func (c *countingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *countingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if err := c.Core.Write(ent, fields); err != nil {
		metrics.WriteErrors.WithLabelValues(c.sink).Inc()
		return err
	}
	metrics.RecordsWritten.WithLabelValues(c.sink).Inc()
	return nil
}
