package error

import "errors"

// LN Markets configuration errors.
var (
	// ErrLNMarketsConfigNotFound is returned when a config id is unknown for the user.
	ErrLNMarketsConfigNotFound = errors.New("lnmarkets config not found")

	// ErrLNMarketsCredentialsMissing is returned when key, secret or passphrase is empty.
	ErrLNMarketsCredentialsMissing = errors.New("lnmarkets credentials missing")

	// ErrLNMarketsInvalidNetwork is returned for networks other than mainnet and testnet.
	ErrLNMarketsInvalidNetwork = errors.New("invalid lnmarkets network")
)

// LNMarketsErrorCode defines error codes for LN Markets configuration errors.
type LNMarketsErrorCode string

const (
	ErrCodeLNMarketsConfigNotFound     LNMarketsErrorCode = "LNM-010001"
	ErrCodeLNMarketsCredentialsMissing LNMarketsErrorCode = "LNM-010002"
	ErrCodeLNMarketsInvalidNetwork     LNMarketsErrorCode = "LNM-010003"
)

// LNMarketsError represents an LN Markets configuration error with code and message.
type LNMarketsError struct {
	Code    LNMarketsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LNMarketsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LNMarketsError) Unwrap() error {
	return e.Err
}

// NewLNMarketsError creates a new LNMarketsError with the given code and message.
func NewLNMarketsError(code LNMarketsErrorCode, message string, err error) *LNMarketsError {
	return &LNMarketsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
