package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/application/usecase/metrics"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
)

// MetricsController handles derived metrics endpoints.
type MetricsController struct {
	getUseCase *metrics.GetMetricsUseCase
}

// NewMetricsController creates a new metrics controller instance.
func NewMetricsController(getUseCase *metrics.GetMetricsUseCase) *MetricsController {
	return &MetricsController{
		getUseCase: getUseCase,
	}
}

// Get handles GET /metrics requests.
func (c *MetricsController) Get(ctx *gin.Context) {
	var query dto.MetricsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err)
		return
	}

	filter := valueobject.MetricsFilter{
		View:     valueobject.ViewMode(query.View),
		Period:   valueobject.Period(query.Period),
		ReportID: query.ReportID,
	}

	var err error
	if filter.Start, err = parseDate(query.Start); err != nil {
		bindError(ctx, err)
		return
	}
	if filter.End, err = parseDate(query.End); err != nil {
		bindError(ctx, err)
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), metrics.GetMetricsInput{Filter: filter})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMetricsResponse(output))
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
