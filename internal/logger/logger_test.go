package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer is a goroutine-safe WriteSyncer for capturing console output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureConsole redirects the console sink and undoes any installation when the test ends.
func captureConsole(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prevOut, prevErr := consoleOutput, errorOutput
	consoleOutput, errorOutput = buf, zapcore.AddSync(&bytes.Buffer{})
	t.Cleanup(func() {
		_ = Shutdown()
		mu.Lock()
		installed, resolved, filter = false, nil, nil
		mu.Unlock()
		consoleOutput, errorOutput = prevOut, prevErr
	})
	return buf
}

func consoleConfig() *config.LoggingConfig {
	return &config.LoggingConfig{
		AppName:      "App",
		Destinations: config.Console,
		Level:        zapcore.InfoLevel,
		Format:       "console",
		Transport:    "udp",
		MaxSizeMB:    1,
	}
}

func TestInstallConsole(t *testing.T) {
	buf := captureConsole(t)

	if err := Install(consoleConfig()); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if !Installed() {
		t.Fatalf("expected Installed to report true")
	}

	before := testutil.ToFloat64(metrics.RecordsWritten.WithLabelValues(metrics.SinkConsole))
	Info("hello", zap.String("user", "alice"))
	Debug("hidden at info")
	zap.L().Warn("through zap globals")

	out := buf.String()
	for _, want := range []string{"hello", `"user": "alice"`, "through zap globals"} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden at info") {
		t.Fatalf("debug record passed an info filter:\n%s", out)
	}
	if got := testutil.ToFloat64(metrics.RecordsWritten.WithLabelValues(metrics.SinkConsole)) - before; got != 2 {
		t.Fatalf("expected 2 counted console records, got %v", got)
	}
}

func TestInstallTwiceFails(t *testing.T) {
	buf := captureConsole(t)

	if err := Install(consoleConfig()); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	first := L()

	other := consoleConfig()
	other.Level = zapcore.ErrorLevel
	err := Install(other)
	if !apperrors.IsType(err, apperrors.ErrorTypeInstall) || !apperrors.HasCode(err, apperrors.CodeAlreadyInstalled) {
		t.Fatalf("expected already-installed error, got %v", err)
	}
	if L() != first {
		t.Fatalf("second Install replaced the installed logger")
	}

	Info("still at info")
	if !strings.Contains(buf.String(), "still at info") {
		t.Fatalf("installed logger changed behavior after failed Install")
	}
}

func TestConcurrentInstallHasOneWinner(t *testing.T) {
	captureConsole(t)

	const callers = 16
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- Install(consoleConfig())
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	winners := 0
	for err := range errs {
		switch {
		case err == nil:
			winners++
		case apperrors.HasCode(err, apperrors.CodeAlreadyInstalled):
		default:
			t.Fatalf("unexpected Install error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one successful Install, got %d", winners)
	}
	if !Installed() {
		t.Fatalf("expected Installed to report true")
	}
}

func TestInstallRefusedAfterShutdown(t *testing.T) {
	captureConsole(t)

	if err := Install(consoleConfig()); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if err := Shutdown(); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if err := Install(consoleConfig()); !apperrors.HasCode(err, apperrors.CodeAlreadyInstalled) {
		t.Fatalf("expected Install to stay refused after Shutdown, got %v", err)
	}
	if err := Shutdown(); !apperrors.HasCode(err, apperrors.CodeNotInstalled) {
		t.Fatalf("expected second Shutdown to fail, got %v", err)
	}
}

func TestInstallWarningsAndTrace(t *testing.T) {
	buf := captureConsole(t)

	cfg := consoleConfig()
	cfg.Level = config.TraceLevel
	cfg.Warnings = []string{"server destination dropped"}
	if err := Install(cfg); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	Trace("very chatty")

	out := buf.String()
	if !strings.Contains(out, "server destination dropped") {
		t.Fatalf("warning not logged:\n%s", out)
	}
	if !strings.Contains(out, "TRACE") || !strings.Contains(out, "very chatty") {
		t.Fatalf("trace record missing or unnamed:\n%s", out)
	}
}

func TestUpdateLevel(t *testing.T) {
	buf := captureConsole(t)

	if err := UpdateLevel("debug"); !apperrors.HasCode(err, apperrors.CodeNotInstalled) {
		t.Fatalf("expected not-installed error, got %v", err)
	}
	if err := Install(consoleConfig()); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if err := UpdateLevel("loud"); !apperrors.IsType(err, apperrors.ErrorTypeResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if err := UpdateLevel("DEBUG"); err != nil {
		t.Fatalf("UpdateLevel returned error: %v", err)
	}
	New("worker").Debug("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("debug record missing after UpdateLevel:\n%s", buf.String())
	}
}

func TestInstallFileSink(t *testing.T) {
	captureConsole(t)
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	cfg := consoleConfig()
	cfg.Destinations = config.File
	cfg.FilePath = path
	cfg.Format = "json"
	if err := Install(cfg); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	New("storage").Info("written to disk")
	if err := Shutdown(); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{`"msg":"written to disk"`, `"logger":"storage"`, `"level":"info"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("log file missing %s:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Fatalf("file output contains color codes:\n%s", data)
	}
}

func TestInstallFailureInstallsNothing(t *testing.T) {
	captureConsole(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	cfg := consoleConfig()
	cfg.Destinations = config.Console | config.File
	cfg.FilePath = filepath.Join(blocker, "app.log")

	err := Install(cfg)
	if !apperrors.HasCode(err, apperrors.CodeSinkOpen) {
		t.Fatalf("expected sink-open error, got %v", err)
	}
	if Installed() || Config() != nil {
		t.Fatalf("a failed Install must leave nothing installed")
	}
	if err := Install(consoleConfig()); err != nil {
		t.Fatalf("Install after a failed attempt returned error: %v", err)
	}
}
