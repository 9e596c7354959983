// Package metrics derives aggregate financial figures from report records
// and memoizes them until the store mutates.
package metrics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// MaxAnnualizedROI caps annualized returns in percent. Short histories with
// large returns compound past any float; they report the cap instead.
var MaxAnnualizedROI = decimal.NewFromInt(1_000_000)

// Calculate aggregates the records of reports whose date falls within
// [start, end], either bound open when nil. Amounts are converted to sats.
func Calculate(reports []entity.Report, start, end *time.Time, now time.Time) entity.ReportMetrics {
	m := entity.ReportMetrics{
		TotalInvested:  decimal.Zero,
		TotalProfit:    decimal.Zero,
		TotalLoss:      decimal.Zero,
		TotalWithdrawn: decimal.Zero,
	}

	var first time.Time
	inRange := func(base entity.RecordBase) bool {
		t := base.Time()
		if t.IsZero() {
			return false
		}
		if start != nil && t.Before(*start) {
			return false
		}
		if end != nil && t.After(*end) {
			return false
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		return true
	}

	profitable := 0
	for i := range reports {
		r := &reports[i]
		for _, inv := range r.Investments {
			if inRange(inv.RecordBase) {
				m.TotalInvested = m.TotalInvested.Add(inv.Sats())
				m.InvestmentCount++
			}
		}
		for _, p := range r.Profits {
			if !inRange(p.RecordBase) {
				continue
			}
			m.ProfitCount++
			if p.IsProfit {
				m.TotalProfit = m.TotalProfit.Add(p.Sats())
				profitable++
			} else {
				m.TotalLoss = m.TotalLoss.Add(p.Sats())
			}
		}
		for _, w := range r.Withdrawals {
			if !inRange(w.RecordBase) {
				continue
			}
			m.WithdrawalCount++
			m.TotalWithdrawn = m.TotalWithdrawn.Add(w.Sats())
			if w.Fee != nil {
				fee := entity.RecordBase{Amount: *w.Fee, Unit: w.Unit}
				m.TotalWithdrawn = m.TotalWithdrawn.Add(fee.Sats())
			}
		}
	}

	m.NetProfit = m.TotalProfit.Sub(m.TotalLoss)
	m.CurrentBalance = m.TotalInvested.Add(m.NetProfit).Sub(m.TotalWithdrawn)

	if m.TotalInvested.IsPositive() {
		m.ROI = m.NetProfit.Div(m.TotalInvested).Mul(hundred)
	}

	m.DaysActive = daysActive(first, end, now)
	m.AnnualizedROI = annualize(m.ROI, m.DaysActive)

	if m.ProfitCount > 0 {
		m.SuccessRate = decimal.NewFromInt(int64(profitable)).Div(decimal.NewFromInt(int64(m.ProfitCount))).Mul(hundred)
	}

	if net := m.TotalInvested.Sub(m.TotalWithdrawn); net.IsPositive() {
		m.InvestmentEfficiency = m.CurrentBalance.Div(net).Mul(hundred)
	}

	m.ROI = m.ROI.Round(2)
	m.AnnualizedROI = m.AnnualizedROI.Round(2)
	m.SuccessRate = m.SuccessRate.Round(2)
	m.InvestmentEfficiency = m.InvestmentEfficiency.Round(2)
	return m
}

// daysActive counts whole days from the first record to the end of the
// range, at least one.
func daysActive(first time.Time, end *time.Time, now time.Time) int {
	if first.IsZero() {
		return 0
	}
	until := now
	if end != nil && end.Before(now) {
		until = *end
	}
	days := int(until.Sub(first).Hours() / 24)
	return max(days, 1)
}

// annualize compounds roi (percent) over a year:
// ((1 + roi/100)^(365/days) - 1) * 100.
func annualize(roi decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 || roi.IsZero() {
		return decimal.Zero
	}
	growth := 1 + roi.InexactFloat64()/100
	if growth <= 0 {
		return decimal.NewFromInt(-100)
	}
	v := (math.Pow(growth, 365/float64(days)) - 1) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) || v > MaxAnnualizedROI.InexactFloat64() {
		return MaxAnnualizedROI
	}
	return decimal.NewFromFloat(v)
}
