package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		kind ImportKind
		in   string
		want string
	}{
		{ImportKindTrade, "t1", "lnm_trade_t1"},
		{ImportKindTrade, "lnm_trade_t1", "lnm_trade_t1"},
		{ImportKindTrade, "lnm_t1", "lnm_trade_t1"},
		{ImportKindTrade, " t1 ", "lnm_trade_t1"},
		{ImportKindDeposit, "d9", "lnm_deposit_d9"},
		{ImportKindWithdrawal, "lnm_withdrawal_w3", "lnm_withdrawal_w3"},
		{ImportKindTrade, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.in, func(t *testing.T) {
			if got := NormalizeID(tt.kind, tt.in); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecord_CompositeKey(t *testing.T) {
	profit := func(originalID string) Record {
		return Record{
			Kind:       RecordKindProfit,
			RecordBase: RecordBase{OriginalID: originalID, Date: "2024-01-01", Amount: decimal.NewFromInt(100), Unit: UnitSats},
			IsProfit:   true,
		}
	}

	bare, prefixed := profit("t1").CompositeKey(), profit("lnm_trade_t1").CompositeKey()
	if bare != prefixed {
		t.Errorf("expected stored and imported ids to share a key, got %q and %q", bare, prefixed)
	}
	if bare != "lnm_trade_t1|100" {
		t.Errorf("unexpected key %q", bare)
	}
	if key := profit("").CompositeKey(); key != "" {
		t.Errorf("expected no key without an upstream id, got %q", key)
	}
}
