package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/usecase/lnmarketsconfig"
	"github.com/btc-tracker/backend/internal/domain/entity"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/middleware"
)

// LNMarketsConfigController handles LN Markets credential endpoints.
type LNMarketsConfigController struct {
	listUseCase   *lnmarketsconfig.ListConfigsUseCase
	createUseCase *lnmarketsconfig.CreateConfigUseCase
	deleteUseCase *lnmarketsconfig.DeleteConfigUseCase
}

// NewLNMarketsConfigController creates a new LN Markets config controller instance.
func NewLNMarketsConfigController(
	listUseCase *lnmarketsconfig.ListConfigsUseCase,
	createUseCase *lnmarketsconfig.CreateConfigUseCase,
	deleteUseCase *lnmarketsconfig.DeleteConfigUseCase,
) *LNMarketsConfigController {
	return &LNMarketsConfigController{
		listUseCase:   listUseCase,
		createUseCase: createUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List handles GET /lnmarkets/configs requests.
func (c *LNMarketsConfigController) List(ctx *gin.Context) {
	identity, _ := middleware.GetUserIdentityFromContext(ctx)

	output, err := c.listUseCase.Execute(ctx.Request.Context(), lnmarketsconfig.ListConfigsInput{
		UserIdentity: identity,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLNMarketsConfigListResponse(output.Configs))
}

// Create handles POST /lnmarkets/configs requests.
func (c *LNMarketsConfigController) Create(ctx *gin.Context) {
	identity, _ := middleware.GetUserIdentityFromContext(ctx)

	var req dto.CreateLNMarketsConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), lnmarketsconfig.CreateConfigInput{
		UserIdentity: identity,
		Name:         req.Name,
		APIKey:       req.APIKey,
		APISecret:    req.APISecret,
		Passphrase:   req.Passphrase,
		Network:      entity.LNMarketsNetwork(req.Network),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToLNMarketsConfigResponse(output.Config))
}

// Delete handles DELETE /lnmarkets/configs/:id requests.
func (c *LNMarketsConfigController) Delete(ctx *gin.Context) {
	identity, _ := middleware.GetUserIdentityFromContext(ctx)

	configID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid config ID format",
		})
		return
	}

	if _, err := c.deleteUseCase.Execute(ctx.Request.Context(), lnmarketsconfig.DeleteConfigInput{
		UserIdentity: identity,
		ConfigID:     configID,
	}); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
