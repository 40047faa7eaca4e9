package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/service"
)

// CreateActorResponse carries the only copy of the generated API key
type CreateActorResponse struct {
	Actor  ActorResponse `json:"actor"`
	APIKey string        `json:"api_key"`
}

// HandleCreateActor handles POST /v1/admin/actors
func HandleCreateActor(actors ActorAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := requireActor(c)
		if !ok {
			return
		}

		var req service.CreateActorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		created, err := actors.CreateAs(c.Request.Context(), admin, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("Actor registered via API",
			zap.String("actor_id", created.Actor.ID.String()),
			zap.String("created_by", admin.ID.String()),
		)
		c.JSON(http.StatusCreated, CreateActorResponse{
			Actor:  newActorResponse(created.Actor),
			APIKey: created.APIKey,
		})
	}
}

// HandleListActors handles GET /v1/admin/actors
func HandleListActors(actors ActorAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := requireActor(c)
		if !ok {
			return
		}

		list, err := actors.List(c.Request.Context(), admin)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]ActorResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, newActorResponse(a))
		}
		c.JSON(http.StatusOK, gin.H{"actors": resp})
	}
}
