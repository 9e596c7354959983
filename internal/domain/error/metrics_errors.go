package error

import "errors"

// ErrInvalidMetricsFilter is returned when a metrics view, period or range is malformed.
var ErrInvalidMetricsFilter = errors.New("invalid metrics filter")

// MetricsErrorCode defines error codes for metrics errors.
type MetricsErrorCode string

const ErrCodeInvalidMetricsFilter MetricsErrorCode = "MET-010001"

// MetricsError represents a metrics error with code and message.
type MetricsError struct {
	Code    MetricsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *MetricsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error {
	return e.Err
}

// NewMetricsError creates a new MetricsError with the given code and message.
func NewMetricsError(code MetricsErrorCode, message string, err error) *MetricsError {
	return &MetricsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
