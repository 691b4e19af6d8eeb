package services

import (
	"strings"

	"example.com/cartonbox/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the struct tag validations and converts the first
// failure into a client-facing validation error.
func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return apperrors.NewValidationError("invalid request body")
	}
	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError("%s is required", fieldLabel(fe))
	case "min":
		return apperrors.NewValidationError("%s must have at least %s", fieldLabel(fe), fe.Param())
	case "gt":
		return apperrors.NewValidationError("%s must be greater than %s", fieldLabel(fe), fe.Param())
	case "gte":
		return apperrors.NewValidationError("%s must be at least %s", fieldLabel(fe), fe.Param())
	case "email":
		return apperrors.NewValidationError("%s must be a valid email address", fieldLabel(fe))
	case "oneof":
		return apperrors.NewValidationError("%s must be one of: %s", fieldLabel(fe), fe.Param())
	default:
		return apperrors.NewValidationError("%s is invalid", fieldLabel(fe))
	}
}

func fieldLabel(fe validator.FieldError) string {
	// Drop the top-level struct name, keep the nested path.
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}
