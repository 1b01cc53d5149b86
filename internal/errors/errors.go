// Package errors provides the typed error taxonomy used at every component
// boundary in searchd. Components return these values; the caller (an
// accept loop, an ingestion worker, main) decides whether to log-and-continue
// or terminate, per the propagation policy in SPEC_FULL.md.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and for callers that want to
// branch on category without type-asserting the concrete struct.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIngest   ErrorType = "ingest"
	ErrorTypeProtocol ErrorType = "protocol"
	ErrorTypeRequest  ErrorType = "request"
)

// ConfigError represents an invalid CLI flag or config file value.
// Configuration errors are fatal: the process prints and exits before
// starting any work.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: field %s=%q invalid: %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// IngestError represents a per-file failure during ingestion (open, read,
// or decode). Ingest errors are transient: the worker logs and continues
// with the next file in its segment.
type IngestError struct {
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewIngestError(op, path string, err error) *IngestError {
	return &IngestError{Operation: op, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest: %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *IngestError) Unwrap() error { return e.Underlying }

// ProtocolError represents a frame-level violation: an unknown kind byte,
// a payload that fails UTF-8 validation, or a missing required payload.
// Protocol errors close the connection; they never cross into application
// logic.
type ProtocolError struct {
	Reason     string
	Underlying error
	Timestamp  time.Time
}

func NewProtocolError(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Underlying: err, Timestamp: time.Now()}
}

func (e *ProtocolError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Underlying)
	}
	return fmt.Sprintf("protocol: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Underlying }

// RequestError represents a request that decoded cleanly but cannot be
// satisfied (e.g. QueryFile naming a path that doesn't exist). Unlike
// ProtocolError, this does not close the connection early: it is turned
// into an Error response and the handler proceeds normally.
type RequestError struct {
	Message string
}

func NewRequestError(format string, args ...any) *RequestError {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

func (e *RequestError) Error() string { return e.Message }
