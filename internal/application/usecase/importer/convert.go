package importer

import (
	"fmt"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

var dateKeys = []string{"closed_ts", "closed_at", "ts", "created_at", "creation_ts"}

// Convert maps a validated upstream record onto the report record it lands
// as. Trades become profit records with a deterministic id so re-imports
// stay stable; deposits become investments and withdrawals stay withdrawals.
func Convert(kind entity.ImportKind, raw entity.RawRecord, now time.Time) (entity.Record, error) {
	upstreamID := stringField(raw, "id", "uid")
	if upstreamID == "" {
		return entity.Record{}, fmt.Errorf("%s record has no id", kind)
	}

	date, ok := timeField(raw, dateKeys...)
	if !ok {
		date = now
	}

	record := entity.Record{
		Kind: kind.RecordKind(),
		RecordBase: entity.RecordBase{
			OriginalID: entity.NormalizeID(kind, upstreamID),
			Date:       date.UTC().Format(entity.DateLayout),
			Unit:       entity.UnitSats,
		},
	}

	switch kind {
	case entity.ImportKindTrade:
		pl, _ := decimalField(raw, "pl")
		record.Amount = pl.Abs()
		record.IsProfit = !pl.IsNegative()
		record.ID = record.OriginalID + "_" + pl.Round(0).String()

	case entity.ImportKindDeposit:
		amount, ok := decimalField(raw, "amount")
		if !ok {
			return entity.Record{}, fmt.Errorf("deposit %s has no amount", upstreamID)
		}
		record.Amount = amount.Abs()

	case entity.ImportKindWithdrawal:
		amount, ok := decimalField(raw, "amount")
		if !ok {
			return entity.Record{}, fmt.Errorf("withdrawal %s has no amount", upstreamID)
		}
		record.Amount = amount.Abs()
		if fee, ok := decimalField(raw, "fee", "fees"); ok {
			fee = fee.Abs()
			record.Fee = &fee
		}
		record.Type = stringField(raw, "type", "method")
		record.TxID = stringField(raw, "txid", "tx_id", "payment_hash")

	default:
		return entity.Record{}, fmt.Errorf("unknown import kind %q", kind)
	}

	return record, nil
}
