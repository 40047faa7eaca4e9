package service

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const dateLayout = "2006-01-02"

var (
	validate  = newValidator()
	nonDigits = regexp.MustCompile(`\D`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// required only rejects "", so whitespace-only names and phones need this
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags and converts failures into ErrValidation
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return &errors.ErrValidation{Message: err.Error()}
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe.Namespace())] = describe(fe)
	}
	return &errors.ErrValidation{Message: "invalid request", Fields: fields}
}

// fieldPath drops the root struct name from the namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "email":
		return "must be a valid e-mail"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// normalizeCPF strips punctuation and requires exactly 11 digits
func normalizeCPF(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != 11 {
		return "", &errors.ErrValidation{
			Message: "invalid CPF: must contain 11 digits",
			Fields:  map[string]string{"client.cpf": "must contain 11 digits"},
		}
	}
	return digits, nil
}

// parseDate reads an optional YYYY-MM-DD value. Format errors were already
// caught by the datetime tag, so a failure here names the field anyway.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, &errors.ErrValidation{
			Message: "invalid date",
			Fields:  map[string]string{field: "must be a date formatted " + dateLayout},
		}
	}
	return &t, nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
