package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrDatasetNotFound   = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrDashboardNotFound = fmt.Errorf("%w: dashboard", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)

	// Ingestion errors
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrMalformedDataset  = errors.New("malformed dataset")
	ErrParse             = errors.New("dataset parse failure")

	// Upstream AI errors
	ErrUpstreamResponse = errors.New("upstream response error")
	ErrUpstreamParse    = errors.New("upstream parse error")

	// Persistence and access errors
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewUnsupportedFormatError(mimeType string) error {
	return fmt.Errorf("%w: %q (expected text/csv or application/json)", ErrUnsupportedFormat, mimeType)
}

func NewMalformedDatasetError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedDataset, reason)
}

func NewParseError(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrParse, detail)
}

func NewUpstreamResponseError(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamResponse, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrUpstreamResponse, detail)
}

func NewUpstreamParseError(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamParse, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrUpstreamParse, detail)
}

func NewPersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIngestionError reports whether err originated in dataset ingestion and
// should be attributed to the uploaded file rather than the service.
func IsIngestionError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMalformedDataset) ||
		errors.Is(err, ErrParse)
}

func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamResponse) ||
		errors.Is(err, ErrUpstreamParse)
}

func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
