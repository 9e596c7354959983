package report

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// AddOptions tunes a single AddRecord call.
type AddOptions struct {
	// SuppressNotify skips the per-record event. Batch callers emit one
	// NotifyBulkCompleted at the end instead.
	SuppressNotify bool
}

// errDuplicateRecord aborts an add that the final duplicate guard rejected.
var errDuplicateRecord = errors.New("duplicate record")

// AddRecord appends one record to the target report: the explicit report,
// else the active report, else the first report. It never returns an error;
// failures are reported as a MergeResultError outcome so batch callers can
// continue with the next record.
func (s *Store) AddRecord(ctx context.Context, record entity.Record, targetReportID string, opts AddOptions) entity.MergeOutcome {
	if err := validateRecord(&record); err != nil {
		return entity.MergeOutcome{Result: entity.MergeResultError, ReportID: targetReportID, Reason: err.Error(), Err: err}
	}

	var reportID, recordID string
	err := s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx, err := resolveTarget(next, targetReportID)
		if err != nil {
			return nil, err
		}
		report := &next.Reports[idx]
		reportID = report.ID

		if isDuplicate(report, record) {
			recordID = record.ID
			return nil, errDuplicateRecord
		}

		// a non-empty id is a deterministic composite id; keep it stable
		if record.ID == "" {
			record.ID = s.newID()
		}
		recordID = record.ID

		appendRecord(report, record)
		touch(report, now)

		if opts.SuppressNotify {
			return nil, nil
		}
		return []entity.StoreEvent{{
			Name:     entity.AddedEvent(record.Kind),
			ReportID: report.ID,
			Detail:   map[string]any{"recordId": record.ID, "originalId": record.OriginalID},
		}}, nil
	})

	switch {
	case err == nil:
		return entity.MergeOutcome{Result: entity.MergeResultAdded, ReportID: reportID, RecordID: recordID}
	case errors.Is(err, errDuplicateRecord):
		return entity.MergeOutcome{Result: entity.MergeResultDuplicate, ReportID: reportID, RecordID: recordID, Reason: "already in report"}
	default:
		slog.Warn("Failed to add record",
			"kind", record.Kind,
			"reportID", targetReportID,
			"originalID", record.OriginalID,
			"error", err,
		)
		return entity.MergeOutcome{Result: entity.MergeResultError, ReportID: reportID, RecordID: recordID, Reason: err.Error(), Err: err}
	}
}

func validateRecord(record *entity.Record) error {
	if !record.Kind.IsValid() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordKind, "unknown record kind "+string(record.Kind), domainerror.ErrInvalidRecordKind)
	}
	if record.Amount.IsNegative() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordAmount, "amount must not be negative", domainerror.ErrInvalidRecordAmount)
	}
	if record.Fee != nil && record.Fee.IsNegative() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordAmount, "fee must not be negative", domainerror.ErrInvalidRecordAmount)
	}
	if record.Unit == "" {
		record.Unit = entity.UnitSats
	}
	if !record.Unit.IsValid() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordUnit, "unit must be BTC or SATS", domainerror.ErrInvalidRecordUnit)
	}
	if record.Time().IsZero() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordDate, "date must be YYYY-MM-DD", domainerror.ErrInvalidRecordDate)
	}
	return nil
}

// isDuplicate is the final guard against the current store state: the same
// local id, or the same upstream id with the same settled value.
func isDuplicate(report *entity.Report, record entity.Record) bool {
	key := record.CompositeKey()
	for _, existing := range report.Records(record.Kind) {
		if record.ID != "" && existing.ID == record.ID {
			return true
		}
		if key != "" && existing.CompositeKey() == key {
			return true
		}
	}
	return false
}

func appendRecord(report *entity.Report, record entity.Record) {
	switch record.Kind {
	case entity.RecordKindInvestment:
		report.Investments = append(report.Investments, record.Investment())
	case entity.RecordKindProfit:
		report.Profits = append(report.Profits, record.Profit())
	case entity.RecordKindWithdrawal:
		report.Withdrawals = append(report.Withdrawals, record.Withdrawal())
	}
}

// DeleteRecord removes one record of kind from a report.
func (s *Store) DeleteRecord(ctx context.Context, reportID string, kind entity.RecordKind, recordID string) error {
	if !kind.IsValid() {
		return domainerror.NewReportError(domainerror.ErrCodeInvalidRecordKind, "unknown record kind "+string(kind), domainerror.ErrInvalidRecordKind)
	}

	return s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx := next.Find(reportID)
		if idx < 0 {
			return nil, reportNotFound(reportID)
		}
		report := &next.Reports[idx]

		removed := false
		switch kind {
		case entity.RecordKindInvestment:
			report.Investments, removed = removeByID(report.Investments, recordID, func(r entity.Investment) string { return r.ID })
		case entity.RecordKindProfit:
			report.Profits, removed = removeByID(report.Profits, recordID, func(r entity.ProfitRecord) string { return r.ID })
		case entity.RecordKindWithdrawal:
			report.Withdrawals, removed = removeByID(report.Withdrawals, recordID, func(r entity.WithdrawalRecord) string { return r.ID })
		}
		if !removed {
			return nil, domainerror.NewReportError(domainerror.ErrCodeRecordNotFound, "record "+recordID+" not found", domainerror.ErrRecordNotFound)
		}

		touch(report, now)
		return []entity.StoreEvent{{
			Name:     entity.DeletedEvent(kind),
			ReportID: report.ID,
			Detail:   map[string]any{"recordId": recordID},
		}}, nil
	})
}

func removeByID[T any](records []T, id string, idOf func(T) string) ([]T, bool) {
	idx := slices.IndexFunc(records, func(r T) bool { return idOf(r) == id })
	if idx < 0 {
		return records, false
	}
	return slices.Delete(records, idx, idx+1), true
}

// BulkClear removes every record of kind from a report and returns how many
// were removed.
func (s *Store) BulkClear(ctx context.Context, reportID string, kind entity.RecordKind) (int, error) {
	if !kind.IsValid() {
		return 0, domainerror.NewReportError(domainerror.ErrCodeInvalidRecordKind, "unknown record kind "+string(kind), domainerror.ErrInvalidRecordKind)
	}

	removed := 0
	err := s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx := next.Find(reportID)
		if idx < 0 {
			return nil, reportNotFound(reportID)
		}
		report := &next.Reports[idx]

		removed = report.RecordCount(kind)
		switch kind {
		case entity.RecordKindInvestment:
			report.Investments = []entity.Investment{}
		case entity.RecordKindProfit:
			report.Profits = []entity.ProfitRecord{}
		case entity.RecordKindWithdrawal:
			report.Withdrawals = []entity.WithdrawalRecord{}
		}

		touch(report, now)
		return []entity.StoreEvent{{
			Name:     entity.EventBulkOperationCompleted,
			ReportID: report.ID,
			Detail:   map[string]any{"operation": "clear", "kind": string(kind), "count": removed},
		}}, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// NotifyBulkCompleted emits a bulk-operation-completed event for merges
// that were added with SuppressNotify.
func (s *Store) NotifyBulkCompleted(ctx context.Context, reportID string, detail map[string]any) {
	s.publish(ctx, []entity.StoreEvent{{
		Name:       entity.EventBulkOperationCompleted,
		ReportID:   reportID,
		Detail:     detail,
		OccurredAt: s.now(),
	}})
}
