package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

func existingProfit(originalID string, amount int64, isProfit bool) entity.Record {
	return entity.Record{
		Kind: entity.RecordKindProfit,
		RecordBase: entity.RecordBase{
			ID:         "local-" + originalID,
			OriginalID: originalID,
			Date:       "2024-02-10",
			Amount:     decimal.NewFromInt(amount),
			Unit:       entity.UnitSats,
		},
		IsProfit: isProfit,
	}
}

func convertTrade(t *testing.T, raw entity.RawRecord) entity.Record {
	t.Helper()
	record, err := Convert(entity.ImportKindTrade, raw, time.Now())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return record
}

func TestDetector(t *testing.T) {
	t.Run("seeded records are duplicates across id encodings", func(t *testing.T) {
		// stored before ids were prefixed
		d := NewDetector(entity.ImportKindTrade, []entity.Record{existingProfit("t1", 100, true)})

		got := d.Check(convertTrade(t, trade("t1", 100)))
		if got.Decision != DecisionDuplicate {
			t.Errorf("expected duplicate, got %s", got.Decision)
		}
		if got.NormalizedID != "lnm_trade_t1" || got.Key != "lnm_trade_t1|100" {
			t.Errorf("unexpected key %q / id %q", got.Key, got.NormalizedID)
		}
	})

	t.Run("same id with a different settled value is new", func(t *testing.T) {
		d := NewDetector(entity.ImportKindTrade, []entity.Record{existingProfit("lnm_trade_t1", 100, true)})

		got := d.Check(convertTrade(t, trade("t1", -50)))
		if got.Decision != DecisionNew {
			t.Errorf("expected new, got %s", got.Decision)
		}
		if got.Key != "lnm_trade_t1|-50" {
			t.Errorf("unexpected key %q", got.Key)
		}
	})

	t.Run("loss and profit of equal size are distinct", func(t *testing.T) {
		d := NewDetector(entity.ImportKindTrade, []entity.Record{existingProfit("lnm_trade_t1", 100, false)})

		if got := d.Check(convertTrade(t, trade("t1", 100))); got.Decision != DecisionNew {
			t.Errorf("expected new, got %s", got.Decision)
		}
	})

	t.Run("first sight is remembered within the run", func(t *testing.T) {
		d := NewDetector(entity.ImportKindTrade, nil)
		record := convertTrade(t, trade("t7", 42))

		if got := d.Check(record); got.Decision != DecisionNew {
			t.Fatalf("expected new on first sight, got %s", got.Decision)
		}
		if got := d.Check(record); got.Decision != DecisionDuplicate {
			t.Errorf("expected duplicate on second sight, got %s", got.Decision)
		}
		if d.Len() != 1 {
			t.Errorf("expected 1 key, got %d", d.Len())
		}
	})

	t.Run("rounding absorbs floating point noise", func(t *testing.T) {
		d := NewDetector(entity.ImportKindTrade, []entity.Record{existingProfit("t1", 100, true)})

		noisy := convertTrade(t, entity.RawRecord{"id": "t1", "pl": 100.0000000001, "closed": true})
		if got := d.Check(noisy); got.Decision != DecisionDuplicate {
			t.Errorf("expected duplicate, got %s (%s)", got.Decision, got.Key)
		}
	})

	t.Run("records without upstream id do not seed", func(t *testing.T) {
		manual := existingProfit("", 100, true)
		d := NewDetector(entity.ImportKindTrade, []entity.Record{manual})
		if d.Len() != 0 {
			t.Errorf("expected no keys, got %d", d.Len())
		}
	})
}
