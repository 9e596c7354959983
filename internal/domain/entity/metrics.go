package entity

import "github.com/shopspring/decimal"

// ReportMetrics holds the aggregate figures derived from a set of records.
// Amounts are in satoshis, ratios in percent.
type ReportMetrics struct {
	TotalInvested        decimal.Decimal `json:"totalInvested"`
	TotalProfit          decimal.Decimal `json:"totalProfit"`
	TotalLoss            decimal.Decimal `json:"totalLoss"`
	NetProfit            decimal.Decimal `json:"netProfit"`
	TotalWithdrawn       decimal.Decimal `json:"totalWithdrawn"`
	CurrentBalance       decimal.Decimal `json:"currentBalance"`
	ROI                  decimal.Decimal `json:"roi"`
	AnnualizedROI        decimal.Decimal `json:"annualizedRoi"`
	SuccessRate          decimal.Decimal `json:"successRate"`
	InvestmentEfficiency decimal.Decimal `json:"investmentEfficiency"`
	InvestmentCount      int             `json:"investmentCount"`
	ProfitCount          int             `json:"profitCount"`
	WithdrawalCount      int             `json:"withdrawalCount"`
	DaysActive           int             `json:"daysActive"`
}
