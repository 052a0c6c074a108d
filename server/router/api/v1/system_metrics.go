package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/observability"
	aicontext "github.com/hrygo/eidos/plugin/ai/context"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalTurns   int64                        `json:"total_turns"`
	FailedTurns  int64                        `json:"failed_turns"`
	Fallbacks    int64                        `json:"fallbacks"`
	SuccessRate  float64                      `json:"success_rate"`
	AvgLatencyMs int64                        `json:"avg_latency_ms"`
	Tools        []observability.ToolSnapshot `json:"tools"`
	ContextCache aicontext.Stats              `json:"context_cache"`
	AIEnabled    bool                         `json:"ai_enabled"`
}

// GetMetricsOverview returns the assistant metrics since startup.
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()
	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalTurns:   snapshot.TurnTotal,
		FailedTurns:  snapshot.TurnFailed,
		Fallbacks:    snapshot.TurnFallback,
		SuccessRate:  snapshot.SuccessRate(),
		AvgLatencyMs: snapshot.AverageDurationMs,
		Tools:        snapshot.Tools,
		ContextCache: s.ContextCache.Stats(),
		AIEnabled:    s.Agent != nil,
	})
}
