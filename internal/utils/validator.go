package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

// fieldMessages holds the user-facing text for known field/tag pairs.
var fieldMessages = map[string]string{
	"roomId/required":       "Room ID is required.",
	"sender/required":       "Sender is required.",
	"type/required":         "Message type is required.",
	"type/oneof":            "Message type must be text or file.",
	"content/required_if":   "Message content is required.",
	"fileUrl/required_if":   "File URL is required.",
	"creator/required":      "Creator is required.",
	"clientId/required":     "Client ID is required.",
	"originalName/required": "File is required.",
	"code/alphanum":         "Room code must be alphanumeric.",
	"code/max":              "Room code is too long.",
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs v over s and converts the first failure into a
// validation AppError.
func ValidateStruct(v *validator.Validate, s any) *app_error.AppError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return app_error.NewValidationError(fmt.Sprintf("Invalid request: %v", err), "validation")
	}

	fe := errs[0]
	if msg, ok := fieldMessages[fe.Field()+"/"+fe.Tag()]; ok {
		return app_error.NewValidationError(msg, fe.Field())
	}
	return app_error.NewValidationError(fmt.Sprintf("Invalid field %s: failed on %s", fe.Field(), fe.Tag()), fe.Field())
}
