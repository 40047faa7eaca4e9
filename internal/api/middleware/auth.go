package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const ActorContextKey = "actor"

// Authenticator resolves an API key to an actor
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*domain.Actor, error)
}

// AuthMiddleware authenticates requests using a Bearer API key
func AuthMiddleware(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "missing authorization header")
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "invalid authorization header format")
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			status := errors.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				logger.Error("Failed to authenticate actor", zap.Error(err))
				abort(c, status, errors.KindInternal, "internal error")
				return
			}
			logger.Warn("Rejected API key", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, err.Error())
			return
		}

		if !actor.IsActive {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "actor account is inactive")
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// RequireRole lets through only actors holding one of the roles
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActorFromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "unauthorized")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, errors.KindPermissionDenied, "role not allowed")
	}
}

// GetActorFromContext retrieves the actor from the Gin context
func GetActorFromContext(c *gin.Context) (*domain.Actor, bool) {
	actor, exists := c.Get(ActorContextKey)
	if !exists {
		return nil, false
	}

	a, ok := actor.(*domain.Actor)
	return a, ok
}

func abort(c *gin.Context, status int, kind errors.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   kind,
		"message": message,
	})
}
