// Package error defines domain-specific errors for the BTC Tracker application.
package error

import "errors"

// Report domain errors.
var (
	// ErrReportNotFound is returned when a report id does not resolve to a report.
	ErrReportNotFound = errors.New("report not found")

	// ErrNoActiveReport is returned when no target report can be resolved.
	ErrNoActiveReport = errors.New("no active report")

	// ErrLastReport is returned when deleting the only remaining report.
	ErrLastReport = errors.New("cannot delete the last report")

	// ErrInvalidReportName is returned when a report name is empty or too long.
	ErrInvalidReportName = errors.New("invalid report name")

	// ErrInvalidRecordKind is returned when the record kind is unknown.
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrInvalidRecordAmount is returned when a record amount is negative.
	ErrInvalidRecordAmount = errors.New("invalid record amount")

	// ErrInvalidRecordDate is returned when a record date cannot be parsed.
	ErrInvalidRecordDate = errors.New("invalid record date")

	// ErrInvalidRecordUnit is returned when a record unit is not BTC or SATS.
	ErrInvalidRecordUnit = errors.New("invalid record unit")

	// ErrRecordNotFound is returned when a record id is not present in a report.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStoreNotLoaded is returned when an operation runs before Load.
	ErrStoreNotLoaded = errors.New("report store not loaded")

	// ErrStorageKeyNotFound is returned by storage when nothing is stored under a key.
	ErrStorageKeyNotFound = errors.New("storage key not found")

	// ErrStorageConflict is returned by storage when the stored revision is not
	// the one the write was computed from.
	ErrStorageConflict = errors.New("storage revision conflict")

	// ErrUnsupportedSchemaVersion is returned when a stored collection is newer than this build.
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
)

// ReportErrorCode defines error codes for report errors.
// Format: RPT-XXYYYY where XX is category and YYYY is specific error.
type ReportErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeReportNotFound      ReportErrorCode = "RPT-010001"
	ErrCodeInvalidReportName   ReportErrorCode = "RPT-010002"
	ErrCodeLastReport          ReportErrorCode = "RPT-010003"
	ErrCodeInvalidRecordKind   ReportErrorCode = "RPT-010004"
	ErrCodeInvalidRecordAmount ReportErrorCode = "RPT-010005"
	ErrCodeInvalidRecordDate   ReportErrorCode = "RPT-010006"
	ErrCodeInvalidRecordUnit   ReportErrorCode = "RPT-010007"
	ErrCodeRecordNotFound      ReportErrorCode = "RPT-010008"
	ErrCodeNoActiveReport      ReportErrorCode = "RPT-010009"

	// Store errors (02XXXX)
	ErrCodePersistFailed     ReportErrorCode = "RPT-020001"
	ErrCodeLoadFailed        ReportErrorCode = "RPT-020002"
	ErrCodeStoreNotLoaded    ReportErrorCode = "RPT-020003"
	ErrCodeUnsupportedSchema ReportErrorCode = "RPT-020004"
	ErrCodeWriteConflict     ReportErrorCode = "RPT-020005"
)

// ReportError represents a report error with code and message.
type ReportError struct {
	Code    ReportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError creates a new ReportError with the given code and message.
func NewReportError(code ReportErrorCode, message string, err error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
