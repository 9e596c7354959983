package entity

import (
	"slices"
	"time"
)

// CurrentSchemaVersion is the version written with every persisted collection.
const CurrentSchemaVersion = "2.0.0"

// Report is a named, independent collection of investment, profit and
// withdrawal records.
type Report struct {
	ID                           string             `json:"id"`
	Name                         string             `json:"name"`
	Description                  string             `json:"description,omitempty"`
	Investments                  []Investment       `json:"investments"`
	Profits                      []ProfitRecord     `json:"profits"`
	Withdrawals                  []WithdrawalRecord `json:"withdrawals"`
	CreatedAt                    time.Time          `json:"createdAt"`
	UpdatedAt                    time.Time          `json:"updatedAt"`
	IsActive                     bool               `json:"isActive"`
	AssociatedLNMarketsConfigIDs []string           `json:"associatedLNMarketsConfigIds,omitempty"`
	Revision                     int64              `json:"revision"`
}

// Records returns the records of one kind as kind-tagged values.
func (r *Report) Records(kind RecordKind) []Record {
	var records []Record
	switch kind {
	case RecordKindInvestment:
		records = make([]Record, 0, len(r.Investments))
		for _, inv := range r.Investments {
			records = append(records, FromInvestment(inv))
		}
	case RecordKindProfit:
		records = make([]Record, 0, len(r.Profits))
		for _, p := range r.Profits {
			records = append(records, FromProfit(p))
		}
	case RecordKindWithdrawal:
		records = make([]Record, 0, len(r.Withdrawals))
		for _, w := range r.Withdrawals {
			records = append(records, FromWithdrawal(w))
		}
	}
	return records
}

// RecordCount returns the number of records of one kind.
func (r *Report) RecordCount(kind RecordKind) int {
	switch kind {
	case RecordKindInvestment:
		return len(r.Investments)
	case RecordKindProfit:
		return len(r.Profits)
	case RecordKindWithdrawal:
		return len(r.Withdrawals)
	}
	return 0
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	c := r
	c.Investments = slices.Clone(r.Investments)
	c.Profits = slices.Clone(r.Profits)
	c.Withdrawals = slices.Clone(r.Withdrawals)
	c.AssociatedLNMarketsConfigIDs = slices.Clone(r.AssociatedLNMarketsConfigIDs)
	if c.Investments == nil {
		c.Investments = []Investment{}
	}
	if c.Profits == nil {
		c.Profits = []ProfitRecord{}
	}
	if c.Withdrawals == nil {
		c.Withdrawals = []WithdrawalRecord{}
	}
	return c
}

// ReportCollection is the unit of durable persistence.
type ReportCollection struct {
	Reports        []Report  `json:"reports"`
	ActiveReportID string    `json:"activeReportId"`
	LastUpdated    time.Time `json:"lastUpdated"`
	Version        string    `json:"version"`
}

// Clone returns a deep copy of the collection.
func (c *ReportCollection) Clone() *ReportCollection {
	out := &ReportCollection{
		Reports:        make([]Report, len(c.Reports)),
		ActiveReportID: c.ActiveReportID,
		LastUpdated:    c.LastUpdated,
		Version:        c.Version,
	}
	for i, r := range c.Reports {
		out.Reports[i] = r.Clone()
	}
	return out
}

// Find returns the index of the report with the given id, or -1.
func (c *ReportCollection) Find(id string) int {
	for i := range c.Reports {
		if c.Reports[i].ID == id {
			return i
		}
	}
	return -1
}

// LegacyReportData is the pre-collection single-report storage shape.
type LegacyReportData struct {
	Investments []Investment       `json:"investments"`
	Profits     []ProfitRecord     `json:"profits"`
	Withdrawals []WithdrawalRecord `json:"withdrawals"`
}
