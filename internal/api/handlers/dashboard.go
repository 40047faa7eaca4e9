package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleDashboard handles GET /v1/service-orders/dashboard
func HandleDashboard(metrics MetricsService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		m, err := metrics.ComputeMetrics(c.Request.Context(), actor)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"today":       m.Today.Format(dateLayout),
			"phases":      m.Phases,
			"overdue":     m.Overdue,
			"due_today":   m.DueToday,
			"upcoming":    m.Upcoming,
			"upcoming_to": m.UpcomingTo.Format(dateLayout),
			"financials":  m.Financials,
			"sweep":       m.Sweep,
		})
	}
}
