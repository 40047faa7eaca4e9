package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/api/middleware"
	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   errors.Kind       `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError maps err to its status. Internal failures are logged and
// their details withheld from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := errors.KindOf(err)
	status := errors.HTTPStatus(err)

	if kind == errors.KindInternal {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, ErrorResponse{Error: kind, Message: "internal error"})
		return
	}

	c.JSON(status, ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Fields:  errors.FieldsOf(err),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   errors.KindValidation,
		Message: "malformed request body: " + err.Error(),
	})
}

func requireActor(c *gin.Context) (*domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: errors.KindUnauthorized, Message: "unauthorized"})
		return nil, false
	}
	return actor, true
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   errors.KindValidation,
			Message: "invalid order id",
			Fields:  map[string]string{"id": "must be a UUID"},
		})
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit/offset; bad values fall back to the service defaults
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
