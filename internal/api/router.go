package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/api/handlers"
	"github.com/roupadegala/servicecontrol/internal/api/middleware"
	"github.com/roupadegala/servicecontrol/internal/config"
	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// Services bundles what the router serves
type Services struct {
	Orders          handlers.OrderService
	Metrics         handlers.MetricsService
	Actors          handlers.ActorAdmin
	Auth            middleware.Authenticator
	IdempotencyKeys repository.IdempotencyKeyRepository
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(svc.Auth, logger))
	{
		v1.GET("/phases", handlers.HandleListPhases(svc.Orders, logger))
		v1.GET("/refusal-reasons", handlers.HandleListRefusalReasons(svc.Orders, logger))

		orders := v1.Group("/service-orders")
		orders.Use(middleware.IdempotencyMiddleware(svc.IdempotencyKeys, logger))
		{
			orders.GET("", handlers.HandleListOrders(svc.Orders, logger))
			orders.POST("", handlers.HandleCreateOrder(svc.Orders, svc.IdempotencyKeys, logger))
			orders.POST("/pre-triage", handlers.HandleCreatePreTriage(svc.Orders, svc.IdempotencyKeys, logger))
			orders.GET("/dashboard", handlers.HandleDashboard(svc.Metrics, logger))
			orders.GET("/phase/:code", handlers.HandleListOrdersByPhase(svc.Orders, logger))

			orders.GET("/:id", handlers.HandleGetOrder(svc.Orders, logger))
			orders.PUT("/:id", handlers.HandleUpdateOrder(svc.Orders, logger))
			orders.GET("/:id/events", handlers.HandleGetOrderEvents(svc.Orders, logger))
			orders.POST("/:id/accept", handlers.HandleTransition(svc.Orders.Accept, logger))
			orders.POST("/:id/mark-paid", handlers.HandleTransition(svc.Orders.MarkPaid, logger))
			orders.POST("/:id/mark-ready", handlers.HandleTransition(svc.Orders.MarkReady, logger))
			orders.POST("/:id/mark-retrieved", handlers.HandleTransition(svc.Orders.MarkRetrieved, logger))
			orders.POST("/:id/mark-returned", handlers.HandleTransition(svc.Orders.MarkReturned, logger))
			orders.POST("/:id/refuse", handlers.HandleRefuseOrder(svc.Orders, logger))
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/actors", handlers.HandleCreateActor(svc.Actors, logger))
			admin.GET("/actors", handlers.HandleListActors(svc.Actors, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.String("error", fmt.Sprintf("%v", recovered)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Error:   errors.KindInternal,
			Message: "internal server error",
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
