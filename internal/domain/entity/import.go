package entity

import (
	"fmt"
	"strings"
)

// ImportKind is the upstream record category a run fetches.
type ImportKind string

const (
	ImportKindTrade      ImportKind = "trade"
	ImportKindDeposit    ImportKind = "deposit"
	ImportKindWithdrawal ImportKind = "withdrawal"
)

// IsValid reports whether the kind is a known upstream category.
func (k ImportKind) IsValid() bool {
	switch k {
	case ImportKindTrade, ImportKindDeposit, ImportKindWithdrawal:
		return true
	}
	return false
}

// RecordKind returns the report category imported records of this kind land in.
func (k ImportKind) RecordKind() RecordKind {
	switch k {
	case ImportKindTrade:
		return RecordKindProfit
	case ImportKindDeposit:
		return RecordKindInvestment
	default:
		return RecordKindWithdrawal
	}
}

// ImportKind returns the upstream category whose records land in this
// report category.
func (k RecordKind) ImportKind() ImportKind {
	switch k {
	case RecordKindProfit:
		return ImportKindTrade
	case RecordKindInvestment:
		return ImportKindDeposit
	default:
		return ImportKindWithdrawal
	}
}

var idPrefixes = map[ImportKind]string{
	ImportKindTrade:      "lnm_trade_",
	ImportKindDeposit:    "lnm_deposit_",
	ImportKindWithdrawal: "lnm_withdrawal_",
}

// NormalizeID returns the canonical imported id for an upstream id, however
// it was prefixed when it was stored.
func NormalizeID(kind ImportKind, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	prefix := idPrefixes[kind]
	id = strings.TrimPrefix(id, prefix)
	id = strings.TrimPrefix(id, "lnm_")
	return prefix + id
}

// RawRecord is one upstream record as decoded from the wire. Field encodings
// vary between API versions, so values are kept untyped.
type RawRecord map[string]any

// PageRequest asks the fetch collaborator for one page.
type PageRequest struct {
	Kind   ImportKind
	Limit  int
	Offset int
}

// PageResult is the fetch collaborator's answer for one page.
type PageResult struct {
	Success bool
	Data    []RawRecord
	IsEmpty bool
	Error   string
}

// StopReason tags why a paginated run ended.
type StopReason string

const (
	StopReasonEmptyPages        StopReason = "emptyPages"
	StopReasonUnproductivePages StopReason = "unproductivePages"
	StopReasonMaxRecords        StopReason = "maxRecords"
	StopReasonMaxOffset         StopReason = "maxOffset"
	StopReasonAPIEndOfData      StopReason = "apiEndOfData"
	StopReasonFirstPageError    StopReason = "firstPageError"
	StopReasonPageFetchFailed   StopReason = "pageFetchFailed"
	StopReasonCancelled         StopReason = "cancelled"
)

// ImportStatus is the coarse state reported to progress sinks.
type ImportStatus string

const (
	ImportStatusIdle     ImportStatus = "idle"
	ImportStatusLoading  ImportStatus = "loading"
	ImportStatusComplete ImportStatus = "complete"
	ImportStatusError    ImportStatus = "error"
)

// ImportProgress is one progress update. Total is an evolving estimate.
type ImportProgress struct {
	Current    int          `json:"current"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
	Status     ImportStatus `json:"status"`
	Message    string       `json:"message"`
}

// ImportStats accumulates per-category counters over a run.
type ImportStats struct {
	Pages      int `json:"pages"`
	Processed  int `json:"processed"`
	Imported   int `json:"imported"`
	Duplicated int `json:"duplicated"`
	Filtered   int `json:"filtered"`
	Errors     int `json:"errors"`
}

// Add folds other into s.
func (s *ImportStats) Add(other ImportStats) {
	s.Pages += other.Pages
	s.Processed += other.Processed
	s.Imported += other.Imported
	s.Duplicated += other.Duplicated
	s.Filtered += other.Filtered
	s.Errors += other.Errors
}

// Summary renders a human-readable end-of-run summary.
func (s ImportStats) Summary(reason StopReason) string {
	return fmt.Sprintf("%d imported, %d duplicates, %d filtered, %d errors (%d processed over %d pages, stopped: %s)",
		s.Imported, s.Duplicated, s.Filtered, s.Errors, s.Processed, s.Pages, reason)
}

// MergeResult is the outcome class of merging one record into the store.
type MergeResult string

const (
	MergeResultAdded     MergeResult = "added"
	MergeResultDuplicate MergeResult = "duplicate"
	MergeResultError     MergeResult = "error"
)

// MergeOutcome is returned for every single-record merge.
type MergeOutcome struct {
	Result   MergeResult
	ReportID string
	RecordID string
	Reason   string

	// Err is the cause of an error result.
	Err error
}
