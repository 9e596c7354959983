package importer

import (
	"slices"
	"strings"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// Rejection reasons.
const (
	ReasonMissingID     = "missing-id"
	ReasonNotClosed     = "not-closed"
	ReasonInvalidAmount = "invalid-amount"
	ReasonFailedStatus  = "failed-status"
	ReasonUnconfirmed   = "unconfirmed"
	ReasonUnknownKind   = "unknown-kind"
)

var (
	tradeIDKeys        = []string{"id", "uid"}
	tradeClosedKeys    = []string{"closed", "is_closed", "isClosed"}
	tradeClosedStatus  = []string{"closed", "done"}
	depositFlagKeys    = []string{"confirmed", "is_confirmed", "success", "successful"}
	depositTxKeys      = []string{"txid", "tx_id", "transaction_id", "payment_hash"}
	depositConfirmKeys = []string{"confirmed_at", "confirmed_ts", "confirmation_ts"}
	depositSuccess     = []string{"confirmed", "success", "successful", "completed", "complete", "done", "settled", "paid"}
	depositFailure     = []string{"failed", "failure", "error", "rejected", "cancelled", "canceled", "expired"}
)

// Validation is the verdict of the record validator.
type Validation struct {
	Accepted bool
	Reason   string
}

func accept() Validation { return Validation{Accepted: true} }

func reject(reason string) Validation { return Validation{Reason: reason} }

// Validate decides whether a raw upstream record is a completed transaction
// worth importing. It has no side effects.
func Validate(kind entity.ImportKind, raw entity.RawRecord) Validation {
	switch kind {
	case entity.ImportKindTrade:
		return validateTrade(raw)
	case entity.ImportKindDeposit:
		return validateDeposit(raw)
	case entity.ImportKindWithdrawal:
		// withdrawal history is always imported
		return accept()
	}
	return reject(ReasonUnknownKind)
}

func validateTrade(raw entity.RawRecord) Validation {
	if stringField(raw, tradeIDKeys...) == "" {
		return reject(ReasonMissingID)
	}
	if closed, known := flagField(raw, tradeClosedKeys...); known && closed {
		return accept()
	}
	if slices.Contains(tradeClosedStatus, status(raw)) {
		return accept()
	}
	// a settled P&L is proof enough when the closed flag is ambiguous
	if pl, ok := decimalField(raw, "pl"); ok && !pl.IsZero() {
		return accept()
	}
	return reject(ReasonNotClosed)
}

// validateDeposit accepts unless there is an explicit failure signal.
func validateDeposit(raw entity.RawRecord) Validation {
	amount, ok := decimalField(raw, "amount")
	if !ok || !amount.IsPositive() {
		return reject(ReasonInvalidAmount)
	}

	st := status(raw)
	if slices.Contains(depositFailure, st) {
		return reject(ReasonFailedStatus)
	}

	if slices.Contains(depositSuccess, st) ||
		stringField(raw, depositTxKeys...) != "" ||
		hasValue(raw, depositConfirmKeys...) {
		return accept()
	}

	known, confirmed := 0, false
	for _, key := range depositFlagKeys {
		if value, ok := flag(raw[key]); ok {
			known++
			confirmed = confirmed || value
		}
	}
	if known > 0 && !confirmed {
		return reject(ReasonUnconfirmed)
	}
	return accept()
}

func status(raw entity.RawRecord) string {
	return strings.ToLower(stringField(raw, "status", "state"))
}

func hasValue(raw entity.RawRecord, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil && v != "" {
			return true
		}
	}
	return false
}
