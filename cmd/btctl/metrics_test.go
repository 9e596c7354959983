package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/application/usecase/metrics"
	"github.com/btc-tracker/backend/internal/domain/entity"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

func TestMetricsMarkdown(t *testing.T) {
	out := &metrics.GetMetricsOutput{
		Metrics: entity.ReportMetrics{
			TotalInvested: decimal.NewFromInt(1000000),
			NetProfit:     decimal.NewFromInt(200000),
			ROI:           decimal.NewFromInt(20),
		},
		View:     valueobject.ViewModeSingle,
		Period:   valueobject.PeriodAll,
		ReportID: "r1",
	}

	md := metricsMarkdown(out)
	for _, want := range []string{
		"# Report r1 (all)",
		"| Invested (sats) | 1000000 |",
		"| Net profit (sats) | 200000 |",
		"| ROI | 20% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in:\n%s", want, md)
		}
	}
}
