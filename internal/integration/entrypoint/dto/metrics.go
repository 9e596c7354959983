package dto

import (
	"time"

	"github.com/btc-tracker/backend/internal/application/usecase/metrics"
	"github.com/btc-tracker/backend/internal/domain/entity"
)

// MetricsQuery represents the query parameters of GET /metrics.
// Start and End use YYYY-MM-DD and only apply to the custom period.
type MetricsQuery struct {
	View     string `form:"view" binding:"omitempty,oneof=single all"`
	Period   string `form:"period" binding:"omitempty,oneof=all 1m 3m 6m 1y ytd custom"`
	Start    string `form:"start"`
	End      string `form:"end"`
	ReportID string `form:"reportId"`
}

// MetricsResponse represents computed metrics.
type MetricsResponse struct {
	View     string               `json:"view"`
	Period   string               `json:"period"`
	ReportID string               `json:"reportId,omitempty"`
	From     *string              `json:"from,omitempty"`
	To       *string              `json:"to,omitempty"`
	Cached   bool                 `json:"cached"`
	Metrics  entity.ReportMetrics `json:"metrics"`
}

// ToMetricsResponse converts a GetMetricsOutput to a MetricsResponse DTO.
func ToMetricsResponse(output *metrics.GetMetricsOutput) MetricsResponse {
	response := MetricsResponse{
		View:     string(output.View),
		Period:   string(output.Period),
		ReportID: output.ReportID,
		Cached:   output.Cached,
		Metrics:  output.Metrics,
	}
	if output.From != nil {
		dateStr := output.From.Format(time.DateOnly)
		response.From = &dateStr
	}
	if output.To != nil {
		dateStr := output.To.Format(time.DateOnly)
		response.To = &dateStr
	}
	return response
}
