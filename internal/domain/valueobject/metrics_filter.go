package valueobject

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ViewMode selects whether metrics summarize one report or every report.
type ViewMode string

const (
	ViewModeSingle ViewMode = "single"
	ViewModeAll    ViewMode = "all"
)

// Period is a named time window for metrics.
type Period string

const (
	PeriodAll         Period = "all"
	PeriodOneMonth    Period = "1m"
	PeriodThreeMonths Period = "3m"
	PeriodSixMonths   Period = "6m"
	PeriodOneYear     Period = "1y"
	PeriodYearToDate  Period = "ytd"
	PeriodCustom      Period = "custom"
)

// IsValid reports whether the period is known.
func (p Period) IsValid() bool {
	switch p {
	case PeriodAll, PeriodOneMonth, PeriodThreeMonths, PeriodSixMonths, PeriodOneYear, PeriodYearToDate, PeriodCustom:
		return true
	}
	return false
}

// MetricsFilter selects the records a metrics computation covers.
type MetricsFilter struct {
	View     ViewMode
	Period   Period
	Start    *time.Time // custom period only
	End      *time.Time // custom period only
	ReportID string     // single view; empty means the active report
}

// Range returns the inclusive date bounds of the filter relative to now.
// A nil bound is open.
func (f MetricsFilter) Range(now time.Time) (start, end *time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := func(t time.Time) *time.Time { return &t }

	switch f.Period {
	case PeriodOneMonth:
		return from(day.AddDate(0, -1, 0)), nil
	case PeriodThreeMonths:
		return from(day.AddDate(0, -3, 0)), nil
	case PeriodSixMonths:
		return from(day.AddDate(0, -6, 0)), nil
	case PeriodOneYear:
		return from(day.AddDate(-1, 0, 0)), nil
	case PeriodYearToDate:
		return from(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)), nil
	case PeriodCustom:
		return f.Start, f.End
	}
	return nil, nil
}

// Key renders the filter as a stable cache key fragment.
func (f MetricsFilter) Key() string {
	var b strings.Builder
	b.WriteString(string(f.View))
	b.WriteByte('|')
	b.WriteString(string(f.Period))
	b.WriteByte('|')
	if f.Period == PeriodCustom {
		if f.Start != nil {
			b.WriteString(strconv.FormatInt(f.Start.Unix(), 10))
		}
		b.WriteByte('-')
		if f.End != nil {
			b.WriteString(strconv.FormatInt(f.End.Unix(), 10))
		}
	}
	return b.String()
}

// Validate checks the filter is well formed.
func (f MetricsFilter) Validate() error {
	if f.View != ViewModeSingle && f.View != ViewModeAll {
		return fmt.Errorf("invalid view mode %q", f.View)
	}
	if !f.Period.IsValid() {
		return fmt.Errorf("invalid period %q", f.Period)
	}
	if f.Period == PeriodCustom && f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return fmt.Errorf("custom period ends before it starts")
	}
	return nil
}
