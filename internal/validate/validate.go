// Package validate wraps go-playground/validator with the messages the API
// returns to clients.
package validate

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
)

var global = New()

// New builds a validator that reports json field names and knows the
// "nonnegative" tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("nonnegative", validateNonNegative)
	return v
}

func validateNonNegative(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() >= 0
	case reflect.Float32, reflect.Float64:
		return f.Float() >= 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// Struct validates s and returns the first failure wrapped in
// apperr.ErrValidation, or nil.
func Struct(ctx context.Context, s any) error {
	err := global.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return apperr.New(apperr.ErrValidation, err.Error())
	}
	return apperr.New(apperr.ErrValidation, message(vErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return field + " exceeds maximum length"
	case "min":
		return field + " is below minimum length"
	case "nonnegative":
		return field + " must not be negative"
	default:
		return field + " is invalid"
	}
}
