package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
)

// handleError maps domain errors to HTTP responses.
func handleError(ctx *gin.Context, err error) {
	var (
		reportErr    *domainerror.ReportError
		importErr    *domainerror.ImportError
		metricsErr   *domainerror.MetricsError
		lnmarketsErr *domainerror.LNMarketsError
	)

	switch {
	case errors.As(err, &reportErr):
		ctx.JSON(statusForReportError(reportErr.Code), dto.ErrorResponse{
			Error: reportErr.Message,
			Code:  string(reportErr.Code),
		})
	case errors.As(err, &importErr):
		ctx.JSON(statusForImportError(importErr.Code), dto.ErrorResponse{
			Error: importErr.Message,
			Code:  string(importErr.Code),
		})
	case errors.As(err, &metricsErr):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: metricsErr.Message,
			Code:  string(metricsErr.Code),
		})
	case errors.As(err, &lnmarketsErr):
		ctx.JSON(statusForLNMarketsError(lnmarketsErr.Code), dto.ErrorResponse{
			Error: lnmarketsErr.Message,
			Code:  string(lnmarketsErr.Code),
		})
	default:
		slog.Error("Unhandled request error",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"error", err,
		)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
	}
}

// statusForReportError maps report error codes to HTTP status codes.
func statusForReportError(code domainerror.ReportErrorCode) int {
	switch code {
	case domainerror.ErrCodeReportNotFound, domainerror.ErrCodeRecordNotFound, domainerror.ErrCodeNoActiveReport:
		return http.StatusNotFound
	case domainerror.ErrCodeLastReport, domainerror.ErrCodeWriteConflict:
		return http.StatusConflict
	case domainerror.ErrCodeInvalidReportName,
		domainerror.ErrCodeInvalidRecordKind,
		domainerror.ErrCodeInvalidRecordAmount,
		domainerror.ErrCodeInvalidRecordDate,
		domainerror.ErrCodeInvalidRecordUnit:
		return http.StatusBadRequest
	case domainerror.ErrCodeStoreNotLoaded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusForImportError maps import error codes to HTTP status codes.
func statusForImportError(code domainerror.ImportErrorCode) int {
	switch code {
	case domainerror.ErrCodeImportJobNotFound, domainerror.ErrCodeImportTargetMissing:
		return http.StatusNotFound
	case domainerror.ErrCodeImportAlreadyRunning:
		return http.StatusConflict
	case domainerror.ErrCodeInvalidImportKind:
		return http.StatusBadRequest
	case domainerror.ErrCodeImportRateLimited:
		return http.StatusTooManyRequests
	case domainerror.ErrCodeFirstPageFailed, domainerror.ErrCodePageFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// statusForLNMarketsError maps LN Markets config error codes to HTTP status codes.
func statusForLNMarketsError(code domainerror.LNMarketsErrorCode) int {
	switch code {
	case domainerror.ErrCodeLNMarketsConfigNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeLNMarketsCredentialsMissing, domainerror.ErrCodeLNMarketsInvalidNetwork:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// bindError writes a 400 for a malformed request body or query.
func bindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request: " + err.Error(),
	})
}
