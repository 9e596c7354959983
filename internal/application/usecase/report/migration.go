package report

import (
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// schemaUpgrade moves a decoded collection from one of the from versions to to.
type schemaUpgrade struct {
	from  []string
	to    string
	apply func(s *Store, collection *entity.ReportCollection, now time.Time)
}

// schemaUpgrades is applied in order until the collection reaches
// entity.CurrentSchemaVersion.
var schemaUpgrades = []schemaUpgrade{
	{from: []string{"", "1", "1.0", "1.0.0"}, to: "2.0.0", apply: upgradeToV2},
}

// decodeCollection decodes a stored collection and runs the schema upgrades
// it needs. migrated reports whether any upgrade ran.
func (s *Store) decodeCollection(raw []byte, now time.Time) (*entity.ReportCollection, bool, error) {
	var collection entity.ReportCollection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, false, domainerror.NewReportError(domainerror.ErrCodeLoadFailed, "failed to decode report collection", err)
	}

	migrated := false
	for collection.Version != entity.CurrentSchemaVersion {
		idx := slices.IndexFunc(schemaUpgrades, func(u schemaUpgrade) bool {
			return slices.Contains(u.from, collection.Version)
		})
		if idx < 0 {
			return nil, false, domainerror.NewReportError(
				domainerror.ErrCodeUnsupportedSchema,
				"stored collection has version "+collection.Version,
				domainerror.ErrUnsupportedSchemaVersion,
			)
		}
		upgrade := schemaUpgrades[idx]
		slog.Info("Upgrading report collection schema", "from", collection.Version, "to", upgrade.to)
		upgrade.apply(s, &collection, now)
		collection.Version = upgrade.to
		migrated = true
	}

	return &collection, migrated, nil
}

// upgradeToV2 fills the fields version 1 collections left optional: ids,
// timestamps, units and empty record lists.
func upgradeToV2(s *Store, collection *entity.ReportCollection, now time.Time) {
	if collection.LastUpdated.IsZero() {
		collection.LastUpdated = now
	}
	for i := range collection.Reports {
		report := &collection.Reports[i]
		if report.ID == "" {
			report.ID = s.newID()
		}
		if report.Name == "" {
			report.Name = DefaultReportName
		}
		if report.CreatedAt.IsZero() {
			report.CreatedAt = now
		}
		if report.UpdatedAt.IsZero() {
			report.UpdatedAt = report.CreatedAt
		}
		for j := range report.Investments {
			s.fillRecordBase(&report.Investments[j].RecordBase)
		}
		for j := range report.Profits {
			s.fillRecordBase(&report.Profits[j].RecordBase)
		}
		for j := range report.Withdrawals {
			s.fillRecordBase(&report.Withdrawals[j].RecordBase)
		}
	}
}

func (s *Store) fillRecordBase(base *entity.RecordBase) {
	if base.ID == "" {
		base.ID = s.newID()
	}
	if !base.Unit.IsValid() {
		base.Unit = entity.UnitSats
	}
}

// migrateLegacy turns single-report legacy data into a one-report
// collection with that report active.
func (s *Store) migrateLegacy(raw []byte, now time.Time) (*entity.ReportCollection, error) {
	var legacy entity.LegacyReportData
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, domainerror.NewReportError(domainerror.ErrCodeLoadFailed, "failed to decode legacy report data", err)
	}

	report := s.newReport(DefaultReportName, "", now)
	if legacy.Investments != nil {
		report.Investments = legacy.Investments
	}
	if legacy.Profits != nil {
		report.Profits = legacy.Profits
	}
	if legacy.Withdrawals != nil {
		report.Withdrawals = legacy.Withdrawals
	}
	for j := range report.Investments {
		s.fillRecordBase(&report.Investments[j].RecordBase)
	}
	for j := range report.Profits {
		s.fillRecordBase(&report.Profits[j].RecordBase)
	}
	for j := range report.Withdrawals {
		s.fillRecordBase(&report.Withdrawals[j].RecordBase)
	}

	collection := &entity.ReportCollection{
		Reports:        []entity.Report{report},
		ActiveReportID: report.ID,
		LastUpdated:    now,
		Version:        entity.CurrentSchemaVersion,
	}
	enforceInvariants(collection)
	return collection, nil
}
