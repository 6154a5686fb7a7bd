package client

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/fetcher/client/schema"
)

var (
	// ErrUsage is the sentinel error wrapped by [UsageError].
	ErrUsage = errors.New("invalid request usage")
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [StatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrSchemaValidation is the sentinel error wrapped by [SchemaValidationError].
	ErrSchemaValidation = errors.New("schema validation failed")
	// ErrTransport wraps failures of the underlying round trip.
	ErrTransport = errors.New("transport failure")
)

// UsageError reports a request that cannot be sent as described.
// It is always returned before any network attempt.
type UsageError struct {
	Field  string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrUsage, e.Field, e.Reason)
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// StatusError is returned when the response status fails classification.
// Response holds the full envelope, including best-effort data.
type StatusError struct {
	StatusCode int
	Body       string
	Response   *Response
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// SchemaValidationError is returned when response data fails its schema,
// regardless of the HTTP status. Data holds the pre-validation value.
type SchemaValidationError struct {
	Message string
	Config  Config
	Data    any
	Issues  schema.Issues
	Cause   error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSchemaValidation, e.Message)
}

// Unwrap exposes both the sentinel and the validator's cause.
func (e *SchemaValidationError) Unwrap() []error {
	return []error{ErrSchemaValidation, e.Cause}
}

func newSchemaError(cfg Config, data any, cause error) *SchemaValidationError {
	issues, ok := schema.AsIssues(cause)
	if !ok {
		issues = schema.Issues{{Path: []any{}, Message: cause.Error()}}
	}

	return &SchemaValidationError{
		Message: cause.Error(),
		Config:  cfg,
		Data:    data,
		Issues:  issues,
		Cause:   cause,
	}
}

// Error kinds reported to the metrics collector.
const (
	kindOK          = "ok"
	kindUsage       = "usage"
	kindStatus      = "status"
	kindSchema      = "schema"
	kindTransport   = "transport"
	kindInterceptor = "interceptor"
)

func errorKind(err error) string {
	switch {
	case err == nil:
		return kindOK
	case errors.Is(err, ErrUsage):
		return kindUsage
	case errors.Is(err, ErrUnexpectedStatusCode):
		return kindStatus
	case errors.Is(err, ErrSchemaValidation):
		return kindSchema
	case errors.Is(err, ErrTransport):
		return kindTransport
	default:
		return kindInterceptor
	}
}
