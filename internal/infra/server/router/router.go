// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/btc-tracker/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                    *gin.Engine
	healthController          *controller.HealthController
	reportController          *controller.ReportController
	recordController          *controller.RecordController
	importController          *controller.ImportController
	metricsController         *controller.MetricsController
	lnMarketsConfigController *controller.LNMarketsConfigController
	importRateLimiter         *middleware.RateLimiter
	defaultUserIdentity       string
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	reportController *controller.ReportController,
	recordController *controller.RecordController,
	importController *controller.ImportController,
	metricsController *controller.MetricsController,
	lnMarketsConfigController *controller.LNMarketsConfigController,
	importRateLimiter *middleware.RateLimiter,
	defaultUserIdentity string,
) *Router {
	return &Router{
		healthController:          healthController,
		reportController:          reportController,
		recordController:          recordController,
		importController:          importController,
		metricsController:         metricsController,
		lnMarketsConfigController: lnMarketsConfigController,
		importRateLimiter:         importRateLimiter,
		defaultUserIdentity:       defaultUserIdentity,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.Use(middleware.Identity(r.defaultUserIdentity))

	reports := v1.Group("/reports")
	{
		reports.GET("", r.reportController.List)
		reports.POST("", r.reportController.Create)
		reports.GET("/:id", r.reportController.Get)
		reports.PATCH("/:id", r.reportController.Update)
		reports.DELETE("/:id", r.reportController.Delete)
		reports.POST("/:id/select", r.reportController.Select)

		reports.POST("/:id/records/:kind", r.recordController.Add)
		reports.DELETE("/:id/records/:kind", r.recordController.Clear)
		reports.DELETE("/:id/records/:kind/:recordId", r.recordController.Delete)
	}

	imports := v1.Group("/imports")
	{
		if r.importRateLimiter != nil {
			imports.POST("", r.importRateLimiter.Middleware(), r.importController.Start)
		} else {
			imports.POST("", r.importController.Start)
		}
		imports.GET("/:jobId", r.importController.Get)
		imports.DELETE("/:jobId", r.importController.Cancel)
	}

	v1.GET("/metrics", r.metricsController.Get)

	configs := v1.Group("/lnmarkets/configs")
	{
		configs.GET("", r.lnMarketsConfigController.List)
		configs.POST("", r.lnMarketsConfigController.Create)
		configs.DELETE("/:id", r.lnMarketsConfigController.Delete)
	}
}
