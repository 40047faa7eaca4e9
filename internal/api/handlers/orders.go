package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/api/middleware"
	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/service"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// HandleCreateOrder handles POST /v1/service-orders
func HandleCreateOrder(orders OrderService, keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.IntakeRequest
		createIdempotent(c, orders, keys, logger, &req, func(ctx context.Context, actor *domain.Actor) (*domain.Order, error) {
			return orders.Create(ctx, actor, req)
		})
	}
}

// HandleCreatePreTriage handles POST /v1/service-orders/pre-triage
func HandleCreatePreTriage(orders OrderService, keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PreTriageRequest
		createIdempotent(c, orders, keys, logger, &req, func(ctx context.Context, actor *domain.Actor) (*domain.Order, error) {
			return orders.CreatePreTriage(ctx, actor, req)
		})
	}
}

// createIdempotent replays the order of a repeated Idempotency-Key, or binds
// req, creates the order and remembers the key.
func createIdempotent(
	c *gin.Context,
	orders OrderService,
	keys repository.IdempotencyKeyRepository,
	logger *zap.Logger,
	req interface{},
	create func(ctx context.Context, actor *domain.Actor) (*domain.Order, error),
) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	key, requestHash, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
	if isExisting {
		order, err := orders.Get(ctx, actor, existingOrderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		bindError(c, err)
		return
	}

	order, err := create(ctx, actor)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	if key != "" {
		if err := keys.Create(ctx, &domain.IdempotencyKey{
			Key:         key,
			ActorID:     actor.ID,
			OrderID:     order.ID,
			RequestHash: requestHash,
		}); err != nil {
			logger.Warn("Failed to store idempotency key",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// HandleListOrders handles GET /v1/service-orders?phase=&late=&limit=&offset=
func HandleListOrders(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		var filter repository.OrderFilter
		filter.Limit, filter.Offset = pagination(c)

		if raw := strings.TrimSpace(c.Query("phase")); raw != "" {
			code, ok := domain.ParsePhaseCode(raw)
			if !ok {
				respondError(c, logger, &errors.ErrValidation{
					Message: "unknown phase",
					Fields:  map[string]string{"phase": raw},
				})
				return
			}
			filter.Phase = &code
		}
		if raw := c.Query("late"); raw != "" {
			late, err := strconv.ParseBool(raw)
			if err != nil {
				respondError(c, logger, &errors.ErrValidation{
					Message: "late must be true or false",
					Fields:  map[string]string{"late": raw},
				})
				return
			}
			filter.Late = &late
		}

		list, err := orders.List(c.Request.Context(), actor, filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": newOrderResponses(list),
			"limit":  filter.Limit,
			"offset": filter.Offset,
		})
	}
}

// HandleListOrdersByPhase handles GET /v1/service-orders/phase/:code
func HandleListOrdersByPhase(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		limit, offset := pagination(c)

		list, err := orders.ListByPhase(c.Request.Context(), actor, c.Param("code"), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": newOrderResponses(list)})
	}
}

// HandleGetOrder handles GET /v1/service-orders/:id
func HandleGetOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		order, err := orders.Get(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleUpdateOrder handles PUT /v1/service-orders/:id
func HandleUpdateOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		var patch service.OrderPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			bindError(c, err)
			return
		}

		order, err := orders.Update(c.Request.Context(), actor, id, patch)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// TransitionFunc is one body-less lifecycle step, e.g. OrderService.Accept
type TransitionFunc func(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)

// HandleTransition handles POST /v1/service-orders/:id/{accept,mark-paid,...}
func HandleTransition(step TransitionFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		order, err := step(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleRefuseOrder handles POST /v1/service-orders/:id/refuse
func HandleRefuseOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		var req service.RefuseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		order, err := orders.Refuse(c.Request.Context(), actor, id, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleGetOrderEvents handles GET /v1/service-orders/:id/events
func HandleGetOrderEvents(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		id, ok := orderIDParam(c)
		if !ok {
			return
		}

		events, err := orders.Events(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]OrderEventResponse, 0, len(events))
		for _, e := range events {
			r := OrderEventResponse{
				ID:        e.ID.String(),
				EventType: e.EventType,
				Data:      e.EventData,
				CreatedAt: e.CreatedAt.Format(timestampLayout),
			}
			if e.ActorID != nil {
				id := e.ActorID.String()
				r.ActorID = &id
			}
			resp = append(resp, r)
		}
		c.JSON(http.StatusOK, gin.H{"events": resp})
	}
}
