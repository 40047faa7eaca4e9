package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	idempotencyKeyCtx      = "idempotency_key"
	idempotencyHashCtx     = "idempotency_request_hash"
	idempotencyExistingCtx = "idempotency_existing_order_id"
)

// IdempotencyMiddleware handles idempotency key validation. It must run
// after AuthMiddleware.
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			abort(c, http.StatusInternalServerError, errors.KindInternal, "failed to process request")
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		// the route is part of the hash so a key cannot be replayed on another endpoint
		h := sha256.New()
		h.Write([]byte(c.FullPath()))
		h.Write([]byte{0})
		h.Write(body)
		requestHash := hex.EncodeToString(h.Sum(nil))

		existingKey, err := keys.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existingKey != nil {
			actor, _ := GetActorFromContext(c)
			if existingKey.RequestHash != requestHash || actor == nil || existingKey.ActorID != actor.ID {
				abort(c, http.StatusConflict, errors.KindConflict,
					"idempotency key conflict: same key used with different payload")
				return
			}
			c.Set(idempotencyExistingCtx, existingKey.OrderID)
		} else {
			c.Set(idempotencyKeyCtx, idempotencyKey)
			c.Set(idempotencyHashCtx, requestHash)
		}

		c.Next()
	}
}

// GetIdempotencyInfo retrieves idempotency information from context. When
// isExisting is set the request replays an order created earlier.
func GetIdempotencyInfo(c *gin.Context) (key string, requestHash string, existingOrderID uuid.UUID, isExisting bool) {
	if existing, ok := c.Get(idempotencyExistingCtx); ok {
		if id, ok := existing.(uuid.UUID); ok {
			return "", "", id, true
		}
	}

	key = c.GetString(idempotencyKeyCtx)
	requestHash = c.GetString(idempotencyHashCtx)
	return key, requestHash, uuid.Nil, false
}
