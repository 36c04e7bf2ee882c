// File: internal/common/validation.go
package common

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in errors are the JSON
// names, and two extra tags are registered: "password" (at least six
// characters with an upper and a lower case letter) and "objectid".
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct runs the shared validator and converts failures into a
// VALIDATION_ERROR APIError. The first field's message becomes the error
// message so callers can surface it directly as a notification.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	apiErr := NewValidationAPIError(FormatValidationErrors(ve))
	apiErr.Message = ValidationMessage(ve[0])
	return apiErr
}

// FieldError builds a single-field VALIDATION_ERROR.
func FieldError(field, message string) *APIError {
	apiErr := NewValidationAPIError(map[string]string{field: message})
	apiErr.Message = message
	return apiErr
}

// IsStrongPassword reports whether pw has at least six characters, one upper
// case and one lower case letter.
func IsStrongPassword(pw string) bool {
	if len(pw) < 6 {
		return false
	}
	var upper, lower bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return upper && lower
}

// humanize turns a JSON field name such as "buyerName" into "Buyer name".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
