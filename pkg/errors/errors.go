package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

// Kind is the machine-readable class of a failure
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation_error"
	KindPermissionDenied Kind = "permission_denied"
	KindUnauthorized     Kind = "unauthorized"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal_error"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrPermissionDenied is returned when the actor may not perform the operation
type ErrPermissionDenied struct {
	Message string
}

func (e *ErrPermissionDenied) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "permission denied"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid phase transition is attempted
type ErrInvalidStateTransition struct {
	From domain.PhaseCode
	To   domain.PhaseCode
}

func (e *ErrInvalidStateTransition) Error() string {
	from := string(e.From)
	if from == "" {
		from = "no phase"
	}
	return fmt.Sprintf("invalid state transition from %s to %s", from, e.To)
}

// ErrInternal wraps an unexpected persistence or integrity failure
type ErrInternal struct {
	Op  string
	Err error
}

func (e *ErrInternal) Error() string {
	if e.Err == nil {
		return e.Op + ": internal error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrInternal) Unwrap() error {
	return e.Err
}

// Internal wraps err unless it already carries a domain kind.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	var internal *ErrInternal
	if stderrors.As(err, &internal) {
		return err
	}
	return &ErrInternal{Op: op, Err: err}
}

// KindOf classifies err. Anything unrecognised is internal.
func KindOf(err error) Kind {
	var (
		notFound   *ErrNotFound
		validation *ErrValidation
		transition *ErrInvalidStateTransition
		denied     *ErrPermissionDenied
		unauth     *ErrUnauthorized
		conflict   *ErrConflict
	)
	switch {
	case stderrors.As(err, &notFound):
		return KindNotFound
	case stderrors.As(err, &validation), stderrors.As(err, &transition):
		return KindValidation
	case stderrors.As(err, &denied):
		return KindPermissionDenied
	case stderrors.As(err, &unauth):
		return KindUnauthorized
	case stderrors.As(err, &conflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to a response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is an ErrNotFound
func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return stderrors.As(err, &notFound)
}

// IsNotFoundResource reports whether err is an ErrNotFound for the given resource
func IsNotFoundResource(err error, resource string) bool {
	var notFound *ErrNotFound
	return stderrors.As(err, &notFound) && notFound.Resource == resource
}

// FieldsOf returns the per-field messages of a validation error, or nil
func FieldsOf(err error) map[string]string {
	var validation *ErrValidation
	if stderrors.As(err, &validation) {
		return validation.Fields
	}
	return nil
}
