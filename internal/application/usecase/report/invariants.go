package report

import "github.com/btc-tracker/backend/internal/domain/entity"

// enforceInvariants repairs the collection so that exactly one report is
// active and it is the one named by ActiveReportID. IsActive flags are
// always re-derived, never trusted. It reports whether anything changed.
func enforceInvariants(collection *entity.ReportCollection) bool {
	changed := false

	if len(collection.Reports) > 0 && collection.Find(collection.ActiveReportID) < 0 {
		collection.ActiveReportID = collection.Reports[0].ID
		changed = true
	}

	for i := range collection.Reports {
		report := &collection.Reports[i]
		active := report.ID == collection.ActiveReportID
		if report.IsActive != active {
			report.IsActive = active
			changed = true
		}
		if report.Investments == nil {
			report.Investments = []entity.Investment{}
		}
		if report.Profits == nil {
			report.Profits = []entity.ProfitRecord{}
		}
		if report.Withdrawals == nil {
			report.Withdrawals = []entity.WithdrawalRecord{}
		}
	}

	if collection.Version != entity.CurrentSchemaVersion {
		collection.Version = entity.CurrentSchemaVersion
		changed = true
	}

	return changed
}
