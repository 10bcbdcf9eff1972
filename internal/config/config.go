package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/Shugur-Network/loginit/internal/errors"
	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

//go:embed defaults.yaml
var defaultYAML []byte

var validate = validator.New()

// Environment variables read during resolution.
const (
	EnvDestination     = "LOG_DESTINATION"
	EnvFilePath        = "LOG_FILE_PATH"
	EnvFileRotation    = "LOG_FILE_ROTATION"
	EnvFileMaxSize     = "LOG_FILE_MAX_SIZE"
	EnvServer          = "LOG_SERVER"
	EnvServerTransport = "LOG_SERVER_TRANSPORT"
	EnvLevel           = "LOG_LEVEL"
	EnvFilter          = "LOG_FILTER"
	EnvFilterCompat    = "RUST_LOG"
	EnvFormat          = "LOG_FORMAT"
)

// viper key -> environment variables, first one set wins
var envBindings = map[string][]string{
	"destination":      {EnvDestination},
	"file_path":        {EnvFilePath},
	"file_rotation":    {EnvFileRotation},
	"file_max_size":    {EnvFileMaxSize},
	"server":           {EnvServer},
	"server_transport": {EnvServerTransport},
	"level":            {EnvLevel},
	"filter":           {EnvFilter, EnvFilterCompat},
	"format":           {EnvFormat},
}

// Overrides carries explicitly set builder values. A nil field is unset and
// falls through to the environment, then to defaults.yaml.
type Overrides struct {
	Console *bool
	File    *bool
	Server  *bool

	FilePath   *string
	FilePrefix *string
	Period     *Period
	Backups    *int
	MaxSizeMB  *int

	ServerAddress *string
	Transport     *string

	Level   *zapcore.Level
	Filter  *string
	Format  *string
	Version *string
}

/* ------------------------------------------------------------------ *
|  Public API                                                         |
* -------------------------------------------------------------------*/

// Resolve merges overrides → environment → embedded defaults, validates the result
// and returns it. Malformed values are resolution errors; structural problems are
// validation errors. Resolve has no side effects beyond reading the environment.
func Resolve(appName string, o Overrides) (*LoggingConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &LoggingConfig{
		AppName:    appName,
		FilePrefix: pick(o.FilePrefix, appName),
		Version:    pick(o.Version, ""),
	}

	// Destinations merge per flag: an explicit builder value, true or false, wins.
	envDest := parseDestinations(v.GetString("destination"))
	for _, flag := range []struct {
		explicit *bool
		dest     Destinations
	}{
		{o.Console, Console},
		{o.File, File},
		{o.Server, Server},
	} {
		on := envDest.Has(flag.dest)
		if flag.explicit != nil {
			on = *flag.explicit
		}
		if on {
			cfg.Destinations = cfg.Destinations.With(flag.dest)
		}
	}

	cfg.FilePath = resolveFilePath(pick(o.FilePath, v.GetString("file_path")), cfg.FilePrefix)

	// An explicit period owns the whole rotation; the env value is not read at all.
	var rotation RotationSpec
	if o.Period != nil {
		rotation.Period = *o.Period
	} else {
		raw := v.GetString("file_rotation")
		if rotation, err = ParseRotation(raw); err != nil {
			return nil, apperrors.ResolutionError(EnvFileRotation, raw, err)
		}
	}
	if o.Backups != nil {
		if *o.Backups < 0 {
			return nil, apperrors.ResolutionError("file backups", strconv.Itoa(*o.Backups), fmt.Errorf("must not be negative"))
		}
		rotation.Keep = *o.Backups
	}
	if rotation.Period == Never {
		rotation.Keep = 0
	}
	cfg.Rotation = rotation

	// Without an explicit cap, a Never file grows unbounded and timed files cap at DefaultMaxSizeMB.
	switch raw := v.GetString("file_max_size"); {
	case o.MaxSizeMB != nil:
		cfg.MaxSizeMB = *o.MaxSizeMB
	case raw != "":
		if cfg.MaxSizeMB, err = strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return nil, apperrors.ResolutionError(EnvFileMaxSize, raw, err)
		}
		if cfg.MaxSizeMB < 1 {
			return nil, apperrors.ResolutionError(EnvFileMaxSize, raw, fmt.Errorf("must be positive"))
		}
	case cfg.Rotation.Period != Never:
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}

	if o.ServerAddress != nil {
		addr, err := ParseServerAddress(*o.ServerAddress)
		if err != nil {
			return nil, apperrors.ResolutionError("server address", *o.ServerAddress, err)
		}
		cfg.Server = &addr
	} else if raw := v.GetString("server"); raw != "" {
		addr, err := ParseServerAddress(raw)
		if err != nil {
			return nil, apperrors.ResolutionError(EnvServer, raw, err)
		}
		cfg.Server = &addr
	}
	cfg.Transport = strings.ToLower(pick(o.Transport, v.GetString("server_transport")))

	if o.Level != nil {
		cfg.Level = *o.Level
	} else {
		raw := v.GetString("level")
		if cfg.Level, err = ParseLevel(raw); err != nil {
			return nil, apperrors.ResolutionError(EnvLevel, raw, err)
		}
	}

	// Builder filters are parsed strictly; env filters skip what they cannot read.
	if o.Filter != nil {
		cfg.Filter = strings.TrimSpace(*o.Filter)
		if cfg.Filter != "" {
			if cfg.Directives, err = ParseDirectives(cfg.Filter); err != nil {
				return nil, apperrors.ResolutionError("filter", cfg.Filter, err)
			}
		}
	} else if cfg.Filter = strings.TrimSpace(v.GetString("filter")); cfg.Filter != "" {
		var skipped []error
		cfg.Directives, skipped = ParseDirectivesLossy(cfg.Filter)
		for _, e := range skipped {
			cfg.Warnings = append(cfg.Warnings, "ignoring filter directive: "+e.Error())
		}
		if len(cfg.Directives) == 0 {
			cfg.Filter = ""
		}
	}

	cfg.Format = strings.ToLower(pick(o.Format, v.GetString("format")))

	// A server destination without an address is dropped rather than failing the call.
	if cfg.Destinations.Has(Server) && cfg.Server == nil {
		cfg.Destinations = cfg.Destinations.Without(Server)
		cfg.Warnings = append(cfg.Warnings,
			apperrors.MissingParameterError("server", "an address (set "+EnvServer+")").Error())
	}
	if cfg.Destinations == 0 {
		cfg.Destinations = Console
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return cfg, nil
}

/* ------------------------------------------------------------------ *
|  Parsers                                                            |
* -------------------------------------------------------------------*/

// ParseLevel accepts error, warn, info, debug and trace in any case.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return zapcore.ErrorLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "trace":
		return TraceLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown level %q (want error, warn, info, debug or trace)", s)
	}
}

// ParseRotation parses "<period>[:<count>]" where period is d, h, m or n.
// An empty string means Never. The count is ignored for n.
func ParseRotation(s string) (RotationSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RotationSpec{Period: Never}, nil
	}

	periodPart, countPart, hasCount := strings.Cut(s, ":")
	var spec RotationSpec
	switch periodPart {
	case "d":
		spec.Period = Daily
	case "h":
		spec.Period = Hourly
	case "m":
		spec.Period = Minutely
	case "n":
		spec.Period = Never
	default:
		return RotationSpec{}, fmt.Errorf("unknown rotation period %q (want d, h, m or n)", periodPart)
	}

	if spec.Period == Never {
		return spec, nil
	}
	if hasCount {
		n, err := strconv.Atoi(countPart)
		if err != nil {
			return RotationSpec{}, fmt.Errorf("backup count %q is not a number", countPart)
		}
		if n <= 0 {
			return RotationSpec{}, fmt.Errorf("backup count must be positive, got %d", n)
		}
		spec.Keep = n
	}
	return spec, nil
}

// ParseServerAddress parses "<host>:<port>".
func ParseServerAddress(s string) (ServerAddress, error) {
	s = strings.TrimSpace(s)
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return ServerAddress{}, err
	}
	if host == "" {
		return ServerAddress{}, fmt.Errorf("missing host in %q", s)
	}
	if net.ParseIP(host) == nil {
		if err := validate.Var(s, "hostname_port"); err != nil {
			return ServerAddress{}, fmt.Errorf("%q is not a valid host:port", s)
		}
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 {
		return ServerAddress{}, fmt.Errorf("invalid port %q", port)
	}
	return ServerAddress{Host: host, Port: uint16(p)}, nil
}

// parseDestinations maps c, f and s to destinations and ignores every other character.
func parseDestinations(s string) Destinations {
	var d Destinations
	for _, r := range s {
		switch r {
		case 'c':
			d = d.With(Console)
		case 'f':
			d = d.With(File)
		case 's':
			d = d.With(Server)
		}
	}
	return d
}

/* ------------------------------------------------------------------ *
|  Helpers                                                            |
* -------------------------------------------------------------------*/

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return v, nil
}

func pick(explicit *string, fallback string) string {
	if explicit != nil {
		return *explicit
	}
	return fallback
}

// resolveFilePath returns path unless it names a directory, in which case
// "<prefix>.log" is placed inside it. An empty path means the working directory.
func resolveFilePath(path, prefix string) string {
	name := prefix + ".log"
	if path == "" {
		return name
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, name)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, name)
	}
	return path
}

// formatValidationError converts validator errors into user-friendly messages
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.ValidationError("configuration", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, getFieldErrorMessage(fieldError))
	}
	return apperrors.ValidationError(validationErrors[0].Field(), strings.Join(messages, "; "))
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	value := fe.Value()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required but not provided", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", field, param, value)
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", field, param, value)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got: %v)", field, param, value)
	default:
		return fmt.Sprintf("%s validation failed: %s (got: %v)", field, fe.Tag(), value)
	}
}
