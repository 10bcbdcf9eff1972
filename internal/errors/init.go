package errors

import (
	"fmt"
)

// Error codes shared by the resolver and the installer.
const (
	CodeBadValue         = "BAD_VALUE"
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeAlreadyInstalled = "ALREADY_INSTALLED"
	CodeSinkOpen         = "SINK_OPEN_FAILED"
	CodeNotInstalled     = "NOT_INSTALLED"
)

// ResolutionError reports a malformed value found while merging builder and environment input.
func ResolutionError(field, value string, cause error) *AppError {
	return Wrap(cause, ErrorTypeResolution, CodeBadValue, fmt.Sprintf("cannot parse %s %q", field, value)).
		WithSeverity(SeverityHigh)
}

// ValidationError reports a resolved configuration that fails structural checks.
func ValidationError(field, reason string) *AppError {
	return New(ErrorTypeValidation, CodeInvalidConfig, fmt.Sprintf("invalid %s", field)).
		WithDetails(reason).
		WithSeverity(SeverityHigh)
}

// MissingParameterError reports a requested destination without the parameter it needs.
func MissingParameterError(destination, parameter string) *AppError {
	return New(ErrorTypeValidation, CodeMissingParameter,
		fmt.Sprintf("%s destination requested without %s", destination, parameter)).
		WithSeverity(SeverityMedium)
}

// InstallError reports a failure to build sinks or to register the process-wide logger.
func InstallError(code string, cause error) *AppError {
	msg := "logger installation failed"
	switch code {
	case CodeAlreadyInstalled:
		msg = "logger already installed in this process"
	case CodeSinkOpen:
		msg = "failed to open log sink"
	case CodeNotInstalled:
		msg = "logger not installed"
	}
	severity := SeverityHigh
	if code == CodeAlreadyInstalled {
		severity = SeverityLow
	}
	return Wrap(cause, ErrorTypeInstall, code, msg).WithSeverity(severity)
}
