package error

import "errors"

// Import domain errors.
var (
	// ErrFirstPageFailed is returned when the first page of a run cannot be fetched.
	ErrFirstPageFailed = errors.New("first page fetch failed")

	// ErrPageFetchFailed is returned when a page fetch failed after the retry budget.
	ErrPageFetchFailed = errors.New("page fetch failed")

	// ErrImportAlreadyRunning is returned when another import holds the report lock.
	ErrImportAlreadyRunning = errors.New("an import is already running for this report")

	// ErrInvalidImportKind is returned when the import kind is unknown.
	ErrInvalidImportKind = errors.New("invalid import kind")

	// ErrImportJobNotFound is returned when an import job id is unknown.
	ErrImportJobNotFound = errors.New("import job not found")

	// ErrImportRateLimited is returned when import triggers arrive too fast.
	ErrImportRateLimited = errors.New("too many import requests")
)

// ImportErrorCode defines error codes for import errors.
// Format: IMP-XXYYYY where XX is category and YYYY is specific error.
type ImportErrorCode string

const (
	// Fetch errors (01XXXX)
	ErrCodeFirstPageFailed ImportErrorCode = "IMP-010001"
	ErrCodePageFetchFailed ImportErrorCode = "IMP-010002"

	// Run state errors (02XXXX)
	ErrCodeImportAlreadyRunning ImportErrorCode = "IMP-020001"
	ErrCodeInvalidImportKind    ImportErrorCode = "IMP-020002"
	ErrCodeImportJobNotFound    ImportErrorCode = "IMP-020003"
	ErrCodeImportRateLimited    ImportErrorCode = "IMP-020004"
	ErrCodeImportTargetMissing  ImportErrorCode = "IMP-020005"
)

// ImportError represents an import error with code and message.
type ImportError struct {
	Code    ImportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError with the given code and message.
func NewImportError(code ImportErrorCode, message string, err error) *ImportError {
	return &ImportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
