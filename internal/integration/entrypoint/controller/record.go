package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/application/usecase/report"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
)

// RecordController handles record endpoints of a report.
type RecordController struct {
	store *report.Store
}

// NewRecordController creates a new record controller instance.
func NewRecordController(store *report.Store) *RecordController {
	return &RecordController{
		store: store,
	}
}

// parseKind accepts the singular or plural record category name.
func parseKind(ctx *gin.Context) (entity.RecordKind, bool) {
	kind := entity.RecordKind(strings.TrimSuffix(ctx.Param("kind"), "s"))
	if !kind.IsValid() {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Unknown record kind " + ctx.Param("kind"),
			Code:  string(domainerror.ErrCodeInvalidRecordKind),
		})
		return "", false
	}
	return kind, true
}

// Add handles POST /reports/:id/records/:kind requests.
func (c *RecordController) Add(ctx *gin.Context) {
	kind, ok := parseKind(ctx)
	if !ok {
		return
	}

	var req dto.AddRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	outcome := c.store.AddRecord(ctx.Request.Context(), req.ToRecord(kind), ctx.Param("id"), report.AddOptions{})
	response := dto.ToMergeOutcomeResponse(outcome)

	switch outcome.Result {
	case entity.MergeResultAdded:
		ctx.JSON(http.StatusCreated, response)
	case entity.MergeResultDuplicate:
		ctx.JSON(http.StatusConflict, response)
	default:
		status := http.StatusBadRequest
		var reportErr *domainerror.ReportError
		if errors.As(outcome.Err, &reportErr) {
			status = statusForReportError(reportErr.Code)
		}
		ctx.JSON(status, response)
	}
}

// Delete handles DELETE /reports/:id/records/:kind/:recordId requests.
func (c *RecordController) Delete(ctx *gin.Context) {
	kind, ok := parseKind(ctx)
	if !ok {
		return
	}

	if err := c.store.DeleteRecord(ctx.Request.Context(), ctx.Param("id"), kind, ctx.Param("recordId")); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Clear handles DELETE /reports/:id/records/:kind requests.
func (c *RecordController) Clear(ctx *gin.Context) {
	kind, ok := parseKind(ctx)
	if !ok {
		return
	}

	removed, err := c.store.BulkClear(ctx.Request.Context(), ctx.Param("id"), kind)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ClearRecordsResponse{Removed: removed})
}
