package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

func TestKindOfAndHTTPStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"not found", &ErrNotFound{Resource: "service_order", ID: "1"}, KindNotFound, http.StatusNotFound},
		{"validation", &ErrValidation{Message: "CPF inválido"}, KindValidation, http.StatusBadRequest},
		{"transition", &ErrInvalidStateTransition{From: domain.PhaseCompleted, To: domain.PhaseRefused}, KindValidation, http.StatusBadRequest},
		{"denied", &ErrPermissionDenied{}, KindPermissionDenied, http.StatusForbidden},
		{"unauthorized", &ErrUnauthorized{}, KindUnauthorized, http.StatusUnauthorized},
		{"conflict", &ErrConflict{}, KindConflict, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("load: %w", &ErrNotFound{Resource: "phase", ID: "REFUSED"}), KindNotFound, http.StatusNotFound},
		{"plain", stderrors.New("connection reset"), KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, KindOf(tc.err))
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}

func TestInternalKeepsDomainErrors(t *testing.T) {
	notFound := &ErrNotFound{Resource: "service_order", ID: "x"}
	assert.Same(t, notFound, Internal("get order", notFound))

	cause := stderrors.New("pq: deadlock detected")
	wrapped := Internal("update order", cause)
	var internal *ErrInternal
	assert.True(t, stderrors.As(wrapped, &internal))
	assert.Equal(t, "update order", internal.Op)
	assert.ErrorIs(t, wrapped, cause)

	assert.Same(t, wrapped, Internal("outer", wrapped))
	assert.Nil(t, Internal("noop", nil))
}

func TestInvalidStateTransitionMessage(t *testing.T) {
	err := &ErrInvalidStateTransition{To: domain.PhaseRefused}
	assert.Equal(t, "invalid state transition from no phase to REFUSED", err.Error())
}

func TestFieldsOf(t *testing.T) {
	err := fmt.Errorf("create: %w", &ErrValidation{Fields: map[string]string{"client.cpf": "invalid"}})
	assert.Equal(t, map[string]string{"client.cpf": "invalid"}, FieldsOf(err))
	assert.Nil(t, FieldsOf(&ErrNotFound{}))
}

func TestIsNotFoundResource(t *testing.T) {
	err := fmt.Errorf("update: %w", &ErrNotFound{Resource: "phase", ID: "x"})
	assert.True(t, IsNotFoundResource(err, "phase"))
	assert.False(t, IsNotFoundResource(err, "service_order"))
	assert.False(t, IsNotFoundResource(&ErrConflict{}, "phase"))
}
