package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

// CollectionReader is the part of the report store metrics read from.
type CollectionReader interface {
	Collection() (*entity.ReportCollection, error)
}

// GetMetricsInput represents the input for computing metrics.
type GetMetricsInput struct {
	Filter valueobject.MetricsFilter
}

// GetMetricsOutput represents the computed metrics.
type GetMetricsOutput struct {
	Metrics  entity.ReportMetrics `json:"metrics"`
	View     valueobject.ViewMode `json:"view"`
	Period   valueobject.Period   `json:"period"`
	ReportID string               `json:"reportId,omitempty"`
	From     *time.Time           `json:"from,omitempty"`
	To       *time.Time           `json:"to,omitempty"`
	Cached   bool                 `json:"cached"`
}

// GetMetricsUseCase computes metrics, consulting the cache first.
type GetMetricsUseCase struct {
	reports CollectionReader
	cache   *Cache
	now     func() time.Time
}

// NewGetMetricsUseCase creates a new GetMetricsUseCase instance.
func NewGetMetricsUseCase(reports CollectionReader, cache *Cache) *GetMetricsUseCase {
	return &GetMetricsUseCase{
		reports: reports,
		cache:   cache,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Execute computes metrics for one report or the whole collection.
func (uc *GetMetricsUseCase) Execute(ctx context.Context, input GetMetricsInput) (*GetMetricsOutput, error) {
	filter := input.Filter
	if filter.View == "" {
		filter.View = valueobject.ViewModeSingle
	}
	if filter.Period == "" {
		filter.Period = valueobject.PeriodAll
	}
	if err := filter.Validate(); err != nil {
		return nil, domainerror.NewMetricsError(domainerror.ErrCodeInvalidMetricsFilter, err.Error(), domainerror.ErrInvalidMetricsFilter)
	}

	collection, err := uc.reports.Collection()
	if err != nil {
		return nil, err
	}

	now := uc.now()
	reports, key, err := uc.scope(collection, filter, now)
	if err != nil {
		return nil, err
	}

	from, to := filter.Range(now)
	output := &GetMetricsOutput{
		View:   filter.View,
		Period: filter.Period,
		From:   from,
		To:     to,
	}
	if filter.View == valueobject.ViewModeSingle {
		output.ReportID = reports[0].ID
	}

	if uc.cache != nil {
		if m, ok := uc.cache.Get(key); ok {
			output.Metrics = m
			output.Cached = true
			return output, nil
		}
	}

	output.Metrics = Calculate(reports, from, to, now)
	if uc.cache != nil {
		uc.cache.Set(key, output.Metrics)
	}
	return output, nil
}

// scope selects the reports feeding the view and builds the cache key from
// the filter, the identity and mutation counter of the data and the day
// relative periods and annualized figures are anchored to.
func (uc *GetMetricsUseCase) scope(collection *entity.ReportCollection, filter valueobject.MetricsFilter, now time.Time) ([]entity.Report, string, error) {
	day := now.Format(entity.DateLayout)
	if filter.View == valueobject.ViewModeAll {
		key := filter.Key() + "|all|" + strconv.FormatInt(collection.LastUpdated.UnixNano(), 10) + "|" + day
		return collection.Reports, key, nil
	}

	id := filter.ReportID
	if id == "" {
		id = collection.ActiveReportID
	}
	idx := collection.Find(id)
	if idx < 0 {
		return nil, "", domainerror.NewReportError(domainerror.ErrCodeReportNotFound, "report "+id+" not found", domainerror.ErrReportNotFound)
	}
	r := collection.Reports[idx]
	key := filter.Key() + "|" + r.ID + "|" + strconv.FormatInt(r.Revision, 10) + "|" + day
	return []entity.Report{r}, key, nil
}
