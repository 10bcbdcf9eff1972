package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/metrics"
	"github.com/Shugur-Network/loginit/internal/workers"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

const (
	gelfQueueSize   = 1024
	gelfErrorReport = 10 * time.Second
)

// gelfReserved names fields that would collide as "_<name>": Graylog drops "_id",
// the rest are set by the sink itself.
var gelfReserved = map[string]bool{"id": true, "app": true, "logger": true, "file": true, "line": true}

// gelfShipper owns the GELF connection and the single worker that writes to it,
// so a slow or unreachable server never blocks the caller.
type gelfShipper struct {
	w       gelf.Writer
	pool    *workers.WorkerPool
	app     string
	host    string
	reports *rate.Limiter
}

func newServerSink(cfg *config.LoggingConfig) (sink, error) {
	addr := cfg.Server.String()

	var (
		w   gelf.Writer
		err error
	)
	switch cfg.Transport {
	case "tcp":
		w, err = gelf.NewTCPWriter(addr)
	default:
		w, err = gelf.NewUDPWriter(addr)
	}
	if err != nil {
		return sink{}, apperrors.InstallError(apperrors.CodeSinkOpen, fmt.Errorf("connect %s/%s: %w", cfg.Transport, addr, err))
	}

	host, _ := os.Hostname()
	s := &gelfShipper{
		w:       w,
		pool:    workers.NewWorkerPool(1, gelfQueueSize),
		app:     cfg.AppName,
		host:    host,
		reports: rate.NewLimiter(rate.Every(gelfErrorReport), 1),
	}
	return sink{
		name:  metrics.SinkServer,
		core:  &gelfCore{LevelEnabler: sinkEnabler, out: s},
		close: s.Close,
	}, nil
}

func (s *gelfShipper) ship(m *gelf.Message) {
	ok := s.pool.AddJob(func() {
		if err := s.w.WriteMessage(m); err != nil {
			metrics.WriteErrors.WithLabelValues(metrics.SinkServer).Inc()
			// one line per interval at most; the server may be down for a while
			if s.reports.Allow() {
				fmt.Fprintf(errorOutput, "%s gelf write failed: %v\n", time.Now().UTC().Format(time.RFC3339), err)
			}
			return
		}
		metrics.RecordsWritten.WithLabelValues(metrics.SinkServer).Inc()
	})
	if !ok {
		metrics.RecordsDropped.WithLabelValues(metrics.SinkServer).Inc()
	}
}

// Close delivers whatever is still queued, then closes the connection.
func (s *gelfShipper) Close() error {
	s.pool.Stop()
	return s.w.Close()
}

// gelfCore turns zap entries into GELF messages. Context fields become
// underscore-prefixed additional fields.
type gelfCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
	out    *gelfShipper
}

func (c *gelfCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &gelfCore{LevelEnabler: c.LevelEnabler, fields: merged, out: c.out}
}

func (c *gelfCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *gelfCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	c.out.ship(c.message(ent, fields))
	return nil
}

// Sync waits until every queued message has been handed to the connection.
func (c *gelfCore) Sync() error {
	c.out.pool.Wait()
	return nil
}

func (c *gelfCore) message(ent zapcore.Entry, fields []zapcore.Field) *gelf.Message {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	extra := make(map[string]interface{}, len(enc.Fields)+4)
	for k, v := range enc.Fields {
		key := "_" + k
		if gelfReserved[k] {
			key += "_"
		}
		extra[key] = v
	}
	extra["_app"] = c.out.app
	if ent.LoggerName != "" {
		extra["_logger"] = ent.LoggerName
	}
	if ent.Caller.Defined {
		extra["_file"] = ent.Caller.File
		extra["_line"] = ent.Caller.Line
	}

	return &gelf.Message{
		Version:  "1.1",
		Host:     c.out.host,
		Short:    ent.Message,
		Full:     ent.Stack,
		TimeUnix: float64(ent.Time.UnixNano()) / float64(time.Second),
		Level:    syslogLevel(ent.Level),
		Facility: c.out.app,
		Extra:    extra,
	}
}

// syslogLevel maps zap levels to the syslog severities GELF uses.
func syslogLevel(l zapcore.Level) int32 {
	switch {
	case l >= zapcore.PanicLevel:
		return 1
	case l >= zapcore.DPanicLevel:
		return 2
	case l >= zapcore.ErrorLevel:
		return 3
	case l >= zapcore.WarnLevel:
		return 4
	case l >= zapcore.InfoLevel:
		return 6
	default:
		return 7
	}
}
