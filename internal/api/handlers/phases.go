package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleListPhases handles GET /v1/phases
func HandleListPhases(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		phases, err := orders.ListPhases(c.Request.Context(), actor)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]PhaseResponse, 0, len(phases))
		for _, p := range phases {
			resp = append(resp, PhaseResponse{ID: p.ID.String(), Code: p.Code, Name: p.Name})
		}
		c.JSON(http.StatusOK, gin.H{"phases": resp})
	}
}

// HandleListRefusalReasons handles GET /v1/refusal-reasons
func HandleListRefusalReasons(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		reasons, err := orders.ListRefusalReasons(c.Request.Context(), actor)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]RefusalReasonResponse, 0, len(reasons))
		for _, r := range reasons {
			resp = append(resp, RefusalReasonResponse{ID: r.ID.String(), Name: r.Name})
		}
		c.JSON(http.StatusOK, gin.H{"refusal_reasons": resp})
	}
}
