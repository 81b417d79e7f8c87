package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"nhtsa-pipeline/internal/api/handler"
	"nhtsa-pipeline/pkg/router"
)

// RegisterRoutes wires the run endpoints and the swagger UI.
func RegisterRoutes(r *router.Router, h *handler.RunHandler) {
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/features", handler.GetRunFeatures)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	r.GET("/api/v1/runs/*/stages", handler.GetRunStages)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
