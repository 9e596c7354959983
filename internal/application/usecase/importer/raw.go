// Package importer contains the incremental import engine: record
// validation, duplicate detection and the paginated fetch controller.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// Upstream field encodings drift between API versions, so every accessor
// tries several keys and tolerates several value encodings.

// stringField returns the first non-empty value among keys rendered as a string.
func stringField(raw entity.RawRecord, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case json.Number:
			s = val.String()
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			s = strconv.Itoa(val)
		case int64:
			s = strconv.FormatInt(val, 10)
		default:
			s = fmt.Sprint(val)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// decimalField returns the first value among keys that parses as a number.
func decimalField(raw entity.RawRecord, keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if d, ok := toDecimal(v); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	}
	return decimal.Zero, false
}

// flag interprets v as a boolean. known is false when v is absent or is
// not one of the accepted encodings: true/false, "true"/"false", 1/0, "1"/"0".
func flag(v any) (value, known bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	case json.Number:
		if n, err := val.Int64(); err == nil && (n == 0 || n == 1) {
			return n == 1, true
		}
	case float64:
		if val == 0 || val == 1 {
			return val == 1, true
		}
	case int:
		if val == 0 || val == 1 {
			return val == 1, true
		}
	}
	return false, false
}

// flagField returns the first known boolean among keys.
func flagField(raw entity.RawRecord, keys ...string) (value, known bool) {
	for _, key := range keys {
		if value, known = flag(raw[key]); known {
			return value, true
		}
	}
	return false, false
}

// timeField returns the first value among keys that parses as a millisecond
// epoch or an RFC 3339 timestamp.
func timeField(raw entity.RawRecord, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if d, ok := toDecimal(v); ok && d.IsPositive() {
			return time.UnixMilli(d.IntPart()).UTC(), true
		}
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
