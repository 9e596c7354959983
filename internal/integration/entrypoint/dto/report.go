package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// CreateReportRequest represents the request body for report creation.
type CreateReportRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description,omitempty"`
}

// UpdateReportRequest represents the request body for report update.
type UpdateReportRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string `json:"description,omitempty"`
}

// ReportSummaryResponse is a report without its records.
type ReportSummaryResponse struct {
	ID                           string    `json:"id"`
	Name                         string    `json:"name"`
	Description                  string    `json:"description,omitempty"`
	IsActive                     bool      `json:"isActive"`
	InvestmentCount              int       `json:"investmentCount"`
	ProfitCount                  int       `json:"profitCount"`
	WithdrawalCount              int       `json:"withdrawalCount"`
	AssociatedLNMarketsConfigIDs []string  `json:"associatedLNMarketsConfigIds"`
	CreatedAt                    time.Time `json:"createdAt"`
	UpdatedAt                    time.Time `json:"updatedAt"`
}

// ReportListResponse represents the response for listing reports.
type ReportListResponse struct {
	Reports        []ReportSummaryResponse `json:"reports"`
	ActiveReportID string                  `json:"activeReportId"`
}

// ToReportSummaryResponse converts a domain Report to a ReportSummaryResponse DTO.
func ToReportSummaryResponse(r *entity.Report) ReportSummaryResponse {
	configs := r.AssociatedLNMarketsConfigIDs
	if configs == nil {
		configs = []string{}
	}
	return ReportSummaryResponse{
		ID:                           r.ID,
		Name:                         r.Name,
		Description:                  r.Description,
		IsActive:                     r.IsActive,
		InvestmentCount:              len(r.Investments),
		ProfitCount:                  len(r.Profits),
		WithdrawalCount:              len(r.Withdrawals),
		AssociatedLNMarketsConfigIDs: configs,
		CreatedAt:                    r.CreatedAt,
		UpdatedAt:                    r.UpdatedAt,
	}
}

// ToReportListResponse converts a collection to a ReportListResponse DTO.
func ToReportListResponse(collection *entity.ReportCollection) ReportListResponse {
	reports := make([]ReportSummaryResponse, 0, len(collection.Reports))
	for i := range collection.Reports {
		reports = append(reports, ToReportSummaryResponse(&collection.Reports[i]))
	}
	return ReportListResponse{
		Reports:        reports,
		ActiveReportID: collection.ActiveReportID,
	}
}

// AddRecordRequest represents the request body for adding one record.
// IsProfit applies to profit records; Fee, Type and TxID to withdrawals.
// The local id is always assigned by the store.
type AddRecordRequest struct {
	OriginalID string           `json:"originalId,omitempty"`
	Date       string           `json:"date" binding:"required"`
	Amount     decimal.Decimal  `json:"amount"`
	Unit       entity.Unit      `json:"unit,omitempty" binding:"omitempty,oneof=BTC SATS"`
	IsProfit   *bool            `json:"isProfit,omitempty"`
	Fee        *decimal.Decimal `json:"fee,omitempty"`
	Type       string           `json:"type,omitempty"`
	TxID       string           `json:"txid,omitempty"`
}

// ToRecord converts the request to a domain record of kind.
func (r AddRecordRequest) ToRecord(kind entity.RecordKind) entity.Record {
	unit := r.Unit
	if unit == "" {
		unit = entity.UnitSats
	}
	record := entity.Record{
		Kind: kind,
		RecordBase: entity.RecordBase{
			OriginalID: r.OriginalID,
			Date:       r.Date,
			Amount:     r.Amount,
			Unit:       unit,
		},
		IsProfit: true,
	}
	if r.IsProfit != nil {
		record.IsProfit = *r.IsProfit
	}
	if kind == entity.RecordKindWithdrawal {
		record.Fee = r.Fee
		record.Type = r.Type
		record.TxID = r.TxID
	}
	return record
}

// MergeOutcomeResponse is the result of adding one record.
type MergeOutcomeResponse struct {
	Result   entity.MergeResult `json:"result"`
	ReportID string             `json:"reportId,omitempty"`
	RecordID string             `json:"recordId,omitempty"`
	Reason   string             `json:"reason,omitempty"`
}

// ToMergeOutcomeResponse converts a MergeOutcome to its DTO.
func ToMergeOutcomeResponse(o entity.MergeOutcome) MergeOutcomeResponse {
	return MergeOutcomeResponse{
		Result:   o.Result,
		ReportID: o.ReportID,
		RecordID: o.RecordID,
		Reason:   o.Reason,
	}
}

// ClearRecordsResponse is the result of a bulk clear.
type ClearRecordsResponse struct {
	Removed int `json:"removed"`
}
