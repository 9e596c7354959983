package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/btc-tracker/backend/internal/application/usecase/metrics"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

type metricsCmd struct {
	period   string
	view     string
	reportID string
	start    string
	end      string
	json     bool
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "print derived investment metrics" }
func (*metricsCmd) Usage() string {
	return `btctl metrics [-period all|1m|3m|6m|1y|ytd|custom] [-view single|all] [-report <id>] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-json]

  Prints invested, profit, withdrawn, balance and return figures.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "all", "Reporting period")
	f.StringVar(&c.view, "view", "single", "single report or all reports")
	f.StringVar(&c.reportID, "report", "", "Report id for the single view. Defaults to the active report.")
	f.StringVar(&c.start, "start", "", "Start date of a custom period")
	f.StringVar(&c.end, "end", "", "End date of a custom period")
	f.BoolVar(&c.json, "json", false, "Print the raw JSON output")
}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	filter := valueobject.MetricsFilter{
		View:     valueobject.ViewMode(c.view),
		Period:   valueobject.Period(c.period),
		ReportID: c.reportID,
	}
	for _, d := range []struct {
		raw string
		dst **time.Time
	}{{c.start, &filter.Start}, {c.end, &filter.End}} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, d.raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q\n", d.raw)
			return subcommands.ExitUsageError
		}
		*d.dst = &t
	}

	return runWithEnv(ctx, func(ctx context.Context, e *env) error {
		out, err := e.injector.MetricsUseCase.Execute(ctx, metrics.GetMetricsInput{Filter: filter})
		if err != nil {
			return err
		}
		if c.json {
			return e.printJSON(out)
		}
		return e.printMarkdown(metricsMarkdown(out))
	})
}

func metricsMarkdown(out *metrics.GetMetricsOutput) string {
	m := out.Metrics
	var md strings.Builder
	title := "All reports"
	if out.ReportID != "" {
		title = "Report " + out.ReportID
	}
	fmt.Fprintf(&md, "# %s (%s)\n\n", title, out.Period)
	md.WriteString("| Metric | Value |\n|---|---:|\n")
	for _, row := range [][2]string{
		{"Invested (sats)", m.TotalInvested.String()},
		{"Profit (sats)", m.TotalProfit.String()},
		{"Loss (sats)", m.TotalLoss.String()},
		{"Net profit (sats)", m.NetProfit.String()},
		{"Withdrawn (sats)", m.TotalWithdrawn.String()},
		{"Balance (sats)", m.CurrentBalance.String()},
		{"ROI", m.ROI.String() + "%"},
		{"Annualized ROI", m.AnnualizedROI.String() + "%"},
		{"Success rate", m.SuccessRate.String() + "%"},
		{"Investment efficiency", m.InvestmentEfficiency.String() + "%"},
		{"Days active", fmt.Sprint(m.DaysActive)},
	} {
		fmt.Fprintf(&md, "| %s | %s |\n", row[0], row[1])
	}
	return md.String()
}
