// internal/handlers/metrics/metrics_handler.go
package metrics

import (
	"net/http"

	"leadflow-service/internal/pkg/response"
	"leadflow-service/internal/service/attendance"

	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	metricsService *attendance.MetricsService
}

func NewMetricsHandler(metricsService *attendance.MetricsService) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
	}
}

// GetMetrics returns the dashboard snapshot recomputed from current state
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	snapshot := h.metricsService.Snapshot(c.Request.Context())
	response.Success(c, http.StatusOK, "metrics retrieved successfully", snapshot)
}
