package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/application/usecase/report"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
)

// ReportController handles report endpoints.
type ReportController struct {
	store *report.Store
}

// NewReportController creates a new report controller instance.
func NewReportController(store *report.Store) *ReportController {
	return &ReportController{
		store: store,
	}
}

// List handles GET /reports requests.
func (c *ReportController) List(ctx *gin.Context) {
	if err := c.store.Refresh(ctx.Request.Context()); err != nil {
		handleError(ctx, err)
		return
	}

	collection, err := c.store.Collection()
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportListResponse(collection))
}

// Create handles POST /reports requests.
func (c *ReportController) Create(ctx *gin.Context) {
	var req dto.CreateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	created, err := c.store.CreateReport(ctx.Request.Context(), req.Name, req.Description)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToReportSummaryResponse(created))
}

// Get handles GET /reports/:id requests. The full report including its
// records is returned.
func (c *ReportController) Get(ctx *gin.Context) {
	if err := c.store.Refresh(ctx.Request.Context()); err != nil {
		handleError(ctx, err)
		return
	}

	r, err := c.store.Report(ctx.Param("id"))
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, r)
}

// Update handles PATCH /reports/:id requests.
func (c *ReportController) Update(ctx *gin.Context) {
	var req dto.UpdateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	updated, err := c.store.UpdateReport(ctx.Request.Context(), ctx.Param("id"), report.UpdateReportInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportSummaryResponse(updated))
}

// Delete handles DELETE /reports/:id requests.
func (c *ReportController) Delete(ctx *gin.Context) {
	if err := c.store.DeleteReport(ctx.Request.Context(), ctx.Param("id")); err != nil {
		handleError(ctx, err)
		return
	}

	// Return no content on success
	ctx.Status(http.StatusNoContent)
}

// Select handles POST /reports/:id/select requests.
func (c *ReportController) Select(ctx *gin.Context) {
	if err := c.store.SelectActiveReport(ctx.Request.Context(), ctx.Param("id")); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
