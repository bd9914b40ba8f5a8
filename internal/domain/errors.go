package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fetcher error taxonomy. Typed errors below unwrap
// to these so callers can classify failures with errors.Is.
var (
	// ErrConfig indicates an invalid SearchRequest, raised before any I/O.
	ErrConfig = errors.New("invalid configuration")

	// ErrFetch indicates a remote search or fetch failure after all retries.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a single malformed record. Always recoverable.
	ErrParse = errors.New("parse failed")

	// ErrExport indicates a file system failure during export.
	ErrExport = errors.New("export failed")

	// ErrCancelled indicates that cancellation was observed.
	ErrCancelled = errors.New("cancelled")
)

// ConfigError describes an invalid SearchRequest field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// FetchError describes a remote failure, including the HTTP status (zero for
// transport errors) and the phase that failed ("esearch" or "efetch").
type FetchError struct {
	Phase      string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (status %d): %s", e.Phase, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Phase, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *FetchError) Unwrap() error {
	return ErrFetch
}

// ExportError describes a failed export. The partial output file is removed
// before the error is returned.
type ExportError struct {
	Format string
	Path   string
	Cause  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export to %s failed: %v", e.Format, e.Path, e.Cause)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ExportError) Unwrap() error {
	return ErrExport
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewFetchError creates a new FetchError.
func NewFetchError(phase string, statusCode int, message string, cause error) *FetchError {
	return &FetchError{Phase: phase, StatusCode: statusCode, Message: message, Cause: cause}
}

// NewExportError creates a new ExportError.
func NewExportError(format, path string, cause error) *ExportError {
	return &ExportError{Format: format, Path: path, Cause: cause}
}
