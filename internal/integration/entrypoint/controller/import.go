package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/application/usecase/importer"
	"github.com/btc-tracker/backend/internal/domain/entity"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/middleware"
)

const importKindAll = "all"

// ImportController starts and tracks background import jobs.
type ImportController struct {
	importUseCase *importer.ImportUseCase
	tracker       *importer.Tracker
}

// NewImportController creates a new import controller instance.
func NewImportController(importUseCase *importer.ImportUseCase, tracker *importer.Tracker) *ImportController {
	return &ImportController{
		importUseCase: importUseCase,
		tracker:       tracker,
	}
}

// Start handles POST /imports requests. The import runs in the background;
// the response carries the job to poll.
func (c *ImportController) Start(ctx *gin.Context) {
	identity, _ := middleware.GetUserIdentityFromContext(ctx)

	var req dto.StartImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	input := importer.ImportInput{
		UserIdentity: identity,
		ConfigID:     req.ConfigID,
		ReportID:     req.ReportID,
	}

	var runner importer.Runner
	if req.Kind == importKindAll {
		runner = func(runCtx context.Context, sink adapter.ProgressSink) (any, error) {
			input.Progress = sink
			return c.importUseCase.ImportAll(runCtx, input)
		}
	} else {
		input.Kind = entity.ImportKind(req.Kind)
		runner = func(runCtx context.Context, sink adapter.ProgressSink) (any, error) {
			input.Progress = sink
			return c.importUseCase.Execute(runCtx, input)
		}
	}

	job := c.tracker.Start(req.ReportID, req.Kind, runner)
	ctx.JSON(http.StatusAccepted, job)
}

// Get handles GET /imports/:jobId requests.
func (c *ImportController) Get(ctx *gin.Context) {
	job, err := c.tracker.Get(ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, job)
}

// Cancel handles DELETE /imports/:jobId requests.
func (c *ImportController) Cancel(ctx *gin.Context) {
	if err := c.tracker.Cancel(ctx.Param("jobId")); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusAccepted)
}
