// Package loginit installs a process-wide zap logger from a fluent builder or
// from environment variables. It can write to the console, to a rotating file
// and to a GELF server over UDP or TCP.
//
// Example:
//
//	cfg, err := loginit.Builder("App").
//	    LogToConsole(true).
//	    LogToFile(true).
//	    Init()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg) // log to console, log to file App.log, default level: info
//
// With only loginit.Builder("App").Init(), the destinations come from the
// environment:
//
//	LOG_DESTINATION    c (console), f (file), s (server), e.g. "cf"
//	LOG_FILE_PATH      log file, or a directory to hold <prefix>.log
//	LOG_FILE_ROTATION  <d|h|m|n>[:<backups>], e.g. "d:7"
//	LOG_FILE_MAX_SIZE  size cap in megabytes before an extra rotation
//	LOG_SERVER         <host>:<port> of the GELF endpoint
//	LOG_SERVER_TRANSPORT udp (default) or tcp
//	LOG_LEVEL          error, warn, info, debug or trace
//	LOG_FILTER         directives such as "info,storage=debug" (RUST_LOG is also read)
//	LOG_FORMAT         console (default) or json
//
// Values set on the builder always win over the environment. A server
// destination without an address is dropped with a warning, and when nothing
// is selected the console is used.
package loginit

import (
	"github.com/Shugur-Network/loginit/internal/config"
	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	"github.com/Shugur-Network/loginit/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the resolved configuration. Its String method describes it.
type Config = config.LoggingConfig

// Destinations is the set of enabled sinks.
type Destinations = config.Destinations

// Period is how often the log file rolls over.
type Period = config.Period

// RotationSpec pairs a Period with the number of backups to keep.
type RotationSpec = config.RotationSpec

// Level is a log level.
type Level = zapcore.Level

const (
	Console = config.Console
	File    = config.File
	Server  = config.Server

	Never    = config.Never
	Daily    = config.Daily
	Hourly   = config.Hourly
	Minutely = config.Minutely

	ErrorLevel = zapcore.ErrorLevel
	WarnLevel  = zapcore.WarnLevel
	InfoLevel  = zapcore.InfoLevel
	DebugLevel = zapcore.DebugLevel
	TraceLevel = config.TraceLevel
)

// InitBuilder collects explicit settings. Every setter returns a new value, so a
// partially configured builder can be reused as a template.
type InitBuilder struct {
	appName string
	o       config.Overrides
}

// Builder starts a configuration for appName. It has no side effects.
func Builder(appName string) InitBuilder {
	return InitBuilder{appName: appName}
}

// LogToConsole enables or disables the console sink regardless of LOG_DESTINATION.
func (b InitBuilder) LogToConsole(v bool) InitBuilder { b.o.Console = &v; return b }

// LogToFile enables or disables the file sink regardless of LOG_DESTINATION.
func (b InitBuilder) LogToFile(v bool) InitBuilder { b.o.File = &v; return b }

// LogToServer enables or disables the GELF sink regardless of LOG_DESTINATION.
func (b InitBuilder) LogToServer(v bool) InitBuilder { b.o.Server = &v; return b }

// LogFilePath sets the log file, or a directory to hold "<prefix>.log".
func (b InitBuilder) LogFilePath(path string) InitBuilder { b.o.FilePath = &path; return b }

// LogFilePrefix sets the file name used when the path is a directory (default: app name).
func (b InitBuilder) LogFilePrefix(prefix string) InitBuilder { b.o.FilePrefix = &prefix; return b }

// LogFileRotation sets how often the file rolls over.
func (b InitBuilder) LogFileRotation(p Period) InitBuilder { b.o.Period = &p; return b }

// LogFileBackups sets how many rotated files are kept; zero keeps all.
// It has no effect when the rotation is Never.
func (b InitBuilder) LogFileBackups(n int) InitBuilder { b.o.Backups = &n; return b }

// LogFileMaxSize caps the file size in megabytes before an extra rotation.
// Without it, timed rotation caps files at 100 MB and Never does not rotate at all.
// Zero removes the cap.
func (b InitBuilder) LogFileMaxSize(mb int) InitBuilder { b.o.MaxSizeMB = &mb; return b }

// LogServerAddress sets the GELF endpoint as "host:port".
func (b InitBuilder) LogServerAddress(addr string) InitBuilder { b.o.ServerAddress = &addr; return b }

// LogServerTransport selects "udp" or "tcp" for the GELF sink.
func (b InitBuilder) LogServerTransport(t string) InitBuilder { b.o.Transport = &t; return b }

// Level sets the default level.
func (b InitBuilder) Level(l Level) InitBuilder { b.o.Level = &l; return b }

// Filter sets a directive expression such as "info,storage=debug". It overrides Level.
func (b InitBuilder) Filter(expr string) InitBuilder { b.o.Filter = &expr; return b }

// Format selects the "console" or "json" encoder for the console and file sinks.
func (b InitBuilder) Format(f string) InitBuilder { b.o.Format = &f; return b }

// Version adds a version field to every record.
func (b InitBuilder) Version(v string) InitBuilder { b.o.Version = &v; return b }

// Resolve merges the builder with the environment without installing anything.
func (b InitBuilder) Resolve() (*Config, error) {
	return config.Resolve(b.appName, b.o)
}

// Init resolves the configuration, opens the sinks and installs the logger for
// the whole process. Only the first successful call in a process installs; any
// later call fails with an install error and changes nothing.
func (b InitBuilder) Init() (*Config, error) {
	cfg, err := b.Resolve()
	if err != nil {
		return nil, err
	}
	if err := logger.Install(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Shutdown flushes and closes the installed sinks.
func Shutdown() error {
	return logger.Shutdown()
}

// L returns the installed logger, or a no-op logger when none is installed.
func L() *zap.Logger {
	return logger.L()
}

// Named returns a child logger whose name filter directives can target.
func Named(component string) *zap.Logger {
	return logger.New(component)
}

// SetLevel changes the default level of the installed logger.
func SetLevel(lvl string) error {
	return logger.UpdateLevel(lvl)
}

// IsResolutionError reports a malformed builder or environment value.
func IsResolutionError(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeResolution)
}

// IsValidationError reports a resolved configuration that is structurally invalid.
func IsValidationError(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeValidation)
}

// IsInstallError reports a failure to open a sink or a repeated installation.
func IsInstallError(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeInstall)
}
