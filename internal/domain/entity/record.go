// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the denomination a record amount is expressed in.
type Unit string

const (
	UnitBTC  Unit = "BTC"
	UnitSats Unit = "SATS"
)

// SatsPerBTC is the number of satoshis in one bitcoin.
const SatsPerBTC = 100_000_000

// DateLayout is the ISO date layout used by record dates.
const DateLayout = "2006-01-02"

// IsValid reports whether the unit is a known denomination.
func (u Unit) IsValid() bool {
	return u == UnitBTC || u == UnitSats
}

// RecordKind identifies one of the three record categories held by a report.
type RecordKind string

const (
	RecordKindInvestment RecordKind = "investment"
	RecordKindProfit     RecordKind = "profit"
	RecordKindWithdrawal RecordKind = "withdrawal"
)

// IsValid reports whether the kind is a known record category.
func (k RecordKind) IsValid() bool {
	switch k {
	case RecordKindInvestment, RecordKindProfit, RecordKindWithdrawal:
		return true
	}
	return false
}

// RecordBase holds the fields every transaction record carries.
// Amount is never negative; direction comes from the kind or IsProfit.
type RecordBase struct {
	ID         string          `json:"id"`
	OriginalID string          `json:"originalId,omitempty"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Unit       Unit            `json:"unit"`
}

// Sats returns the amount converted to satoshis.
func (b RecordBase) Sats() decimal.Decimal {
	if b.Unit == UnitBTC {
		return b.Amount.Mul(decimal.NewFromInt(SatsPerBTC))
	}
	return b.Amount
}

// Time parses the record date. Unparseable dates yield the zero time.
func (b RecordBase) Time() time.Time {
	t, err := time.Parse(DateLayout, b.Date)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, b.Date); err != nil {
			return time.Time{}
		}
	}
	return t
}

// Investment is a contribution to the tracked position.
type Investment struct {
	RecordBase
}

// ProfitRecord is a realized profit or loss.
type ProfitRecord struct {
	RecordBase
	IsProfit bool `json:"isProfit"`
}

// WithdrawalRecord is a withdrawal out of the tracked position.
type WithdrawalRecord struct {
	RecordBase
	Fee  *decimal.Decimal `json:"fee,omitempty"`
	Type string           `json:"type,omitempty"`
	TxID string           `json:"txid,omitempty"`
}

// Record is a kind-tagged view over the three record variants, used by
// operations that work on any category.
type Record struct {
	Kind RecordKind
	RecordBase
	IsProfit bool
	Fee      *decimal.Decimal
	Type     string
	TxID     string
}

// SignedSats returns the settled value in satoshis with losses negative.
func (r Record) SignedSats() decimal.Decimal {
	sats := r.Sats()
	if r.Kind == RecordKindProfit && !r.IsProfit {
		return sats.Neg()
	}
	return sats
}

// Investment converts the record to an Investment.
func (r Record) Investment() Investment {
	return Investment{RecordBase: r.RecordBase}
}

// Profit converts the record to a ProfitRecord.
func (r Record) Profit() ProfitRecord {
	return ProfitRecord{RecordBase: r.RecordBase, IsProfit: r.IsProfit}
}

// Withdrawal converts the record to a WithdrawalRecord.
func (r Record) Withdrawal() WithdrawalRecord {
	return WithdrawalRecord{RecordBase: r.RecordBase, Fee: r.Fee, Type: r.Type, TxID: r.TxID}
}

// FromInvestment wraps an Investment as a Record.
func FromInvestment(i Investment) Record {
	return Record{Kind: RecordKindInvestment, RecordBase: i.RecordBase}
}

// FromProfit wraps a ProfitRecord as a Record.
func FromProfit(p ProfitRecord) Record {
	return Record{Kind: RecordKindProfit, RecordBase: p.RecordBase, IsProfit: p.IsProfit}
}

// FromWithdrawal wraps a WithdrawalRecord as a Record.
func FromWithdrawal(w WithdrawalRecord) Record {
	return Record{Kind: RecordKindWithdrawal, RecordBase: w.RecordBase, Fee: w.Fee, Type: w.Type, TxID: w.TxID}
}

// CompositeKey joins a normalized upstream id with a settled value rounded
// to whole satoshis, absorbing floating-point noise in upstream amounts.
func CompositeKey(normalizedID string, settledSats decimal.Decimal) string {
	return normalizedID + "|" + settledSats.Round(0).String()
}

// CompositeKey returns the record's composite key over its normalized
// upstream id, or "" when it carries none.
func (r Record) CompositeKey() string {
	id := NormalizeID(r.Kind.ImportKind(), r.OriginalID)
	if id == "" {
		return ""
	}
	return CompositeKey(id, r.SignedSats())
}
