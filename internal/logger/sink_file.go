package logger

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/metrics"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// fileRotator rolls a lumberjack file over at every UTC period boundary.
// lumberjack itself only rotates on size; it also prunes backups beyond MaxBackups.
type fileRotator struct {
	lj     *lumberjack.Logger
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

func newFileSink(cfg *config.LoggingConfig) (sink, error) {
	enc, err := buildEncoder(cfg.Format, false)
	if err != nil {
		return sink{}, apperrors.InstallError(apperrors.CodeSinkOpen, err)
	}
	lj, err := openLumberjack(cfg)
	if err != nil {
		return sink{}, apperrors.InstallError(apperrors.CodeSinkOpen, err)
	}

	r := startRotator(lj, cfg.Rotation.Period.Duration())
	core := zapcore.NewCore(enc, zapcore.AddSync(lj), sinkEnabler)
	return sink{
		name:  metrics.SinkFile,
		core:  &countingCore{Core: core, sink: metrics.SinkFile},
		close: r.Close,
	}, nil
}

func openLumberjack(cfg *config.LoggingConfig) (*lumberjack.Logger, error) {
	if dir := filepath.Dir(cfg.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	// lumberjack opens lazily on first write; open once here so an unwritable path fails now.
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	_ = f.Close()

	// lumberjack reads MaxSize 0 as 100 MB
	maxSize := cfg.MaxSizeMB
	if maxSize == 0 {
		maxSize = math.MaxInt32
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    maxSize,
		MaxBackups: cfg.Rotation.Keep,
		Compress:   true,
	}, nil
}

// startRotator starts the schedule; a zero period only wraps lj for Close.
func startRotator(lj *lumberjack.Logger, period time.Duration) *fileRotator {
	r := &fileRotator{
		lj:     lj,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if period <= 0 {
		close(r.done)
		return r
	}
	go r.loop()
	return r
}

func (r *fileRotator) loop() {
	defer close(r.done)
	for {
		t := time.NewTimer(time.Until(nextBoundary(time.Now(), r.period)))
		select {
		case <-r.stop:
			t.Stop()
			return
		case <-t.C:
			if err := r.lj.Rotate(); err != nil {
				metrics.WriteErrors.WithLabelValues(metrics.SinkFile).Inc()
				fmt.Fprintf(errorOutput, "%s rotate %s: %v\n", time.Now().UTC().Format(time.RFC3339), r.lj.Filename, err)
				continue
			}
			metrics.FileRotations.Inc()
		}
	}
}

// Close stops the schedule and closes the current file. It is safe to call once.
func (r *fileRotator) Close() error {
	close(r.stop)
	<-r.done
	return r.lj.Close()
}

// nextBoundary returns the first multiple of period after now, counted in UTC.
func nextBoundary(now time.Time, period time.Duration) time.Time {
	return now.UTC().Truncate(period).Add(period)
}
