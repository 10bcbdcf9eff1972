package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below zap's debug level.
const TraceLevel = zapcore.DebugLevel - 1

// OffLevel is above every level zap emits, so a filter set to it lets nothing through.
const OffLevel = zapcore.FatalLevel + 1

// Destinations is the set of sinks a configuration enables.
type Destinations uint8

const (
	Console Destinations = 1 << iota
	File
	Server
)

// Has reports whether every destination in d2 is present in d.
func (d Destinations) Has(d2 Destinations) bool { return d2 != 0 && d&d2 == d2 }

// With returns d with d2 added.
func (d Destinations) With(d2 Destinations) Destinations { return d | d2 }

// Without returns d with d2 removed.
func (d Destinations) Without(d2 Destinations) Destinations { return d &^ d2 }

func (d Destinations) String() string {
	names := make([]string, 0, 3)
	if d.Has(Console) {
		names = append(names, "console")
	}
	if d.Has(File) {
		names = append(names, "file")
	}
	if d.Has(Server) {
		names = append(names, "server")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Period is how often the log file is rolled over.
type Period int

const (
	Never Period = iota
	Daily
	Hourly
	Minutely
)

// Duration returns the length of one rotation period, or zero for Never.
func (p Period) Duration() time.Duration {
	switch p {
	case Daily:
		return 24 * time.Hour
	case Hourly:
		return time.Hour
	case Minutely:
		return time.Minute
	default:
		return 0
	}
}

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	case Minutely:
		return "minutely"
	default:
		return "never"
	}
}

// RotationSpec describes when the log file rolls over and how many backups survive.
// Keep is zero when no retention limit was requested; it is ignored for Never.
type RotationSpec struct {
	Period Period
	Keep   int
}

// ServerAddress is the host and port of a GELF endpoint.
type ServerAddress struct {
	Host string
	Port uint16
}

func (a ServerAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// DefaultMaxSizeMB caps timed rotation files when no size is configured.
const DefaultMaxSizeMB = 100

// LoggingConfig is the resolved configuration used to build the process-wide logger.
// It is produced once by Resolve and never mutated afterwards.
type LoggingConfig struct {
	AppName      string       `validate:"required"`
	Version      string       `validate:"omitempty,max=64"`
	Destinations Destinations `validate:"required"`

	FilePath   string       `validate:"required"`
	FilePrefix string       `validate:"required"`
	Rotation   RotationSpec `validate:"-"`
	MaxSizeMB  int          `validate:"omitempty,min=1,max=10000"` // 0: no size cap

	Server    *ServerAddress `validate:"-"`
	Transport string         `validate:"oneof=udp tcp"`

	Level      zapcore.Level `validate:"min=-2,max=2"`
	Filter     string        `validate:"-"`
	Directives []Directive   `validate:"-"`
	Format     string        `validate:"oneof=console json"`

	// Warnings lists adjustments made during resolution, such as dropped destinations.
	Warnings []string `validate:"-"`
}

// LevelString names a level the way LOG_LEVEL spells it.
func LevelString(l zapcore.Level) string {
	switch {
	case l == TraceLevel:
		return "trace"
	case l >= OffLevel:
		return "off"
	default:
		return l.String()
	}
}

// String describes the active destinations, e.g.
// "log to console, log to file ./App.log, rotation: daily:3, default level: info".
func (c *LoggingConfig) String() string {
	parts := make([]string, 0, 3)
	if c.Destinations.Has(Console) {
		parts = append(parts, "log to console")
	}
	if c.Destinations.Has(File) {
		part := "log to file " + c.FilePath
		if c.Rotation.Period != Never {
			part += fmt.Sprintf(", rotation: %s:%d", c.Rotation.Period, c.Rotation.Keep)
		}
		parts = append(parts, part)
	}
	if c.Destinations.Has(Server) && c.Server != nil {
		parts = append(parts, fmt.Sprintf("log to server %s/%s", c.Transport, c.Server))
	}
	if len(parts) == 0 {
		return ""
	}

	s := strings.Join(parts, ", ") + ", default level: " + LevelString(c.Level)
	if c.Filter != "" {
		s += fmt.Sprintf(", (%s)", c.Filter)
	}
	return s
}
