// Package validation checks request payloads against their struct tags and
// turns failures into field-level validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"shopcore/internal/model"

	"github.com/go-playground/validator/v10"
)

// Validator validates request payloads.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s. Failures are returned as a model.KindValidation error
// whose Fields map names each offending field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return model.NewValidationError("request validation failed", fields)
}

// CheckoutRequest validates a checkout payload. Guest contact fields are only
// required when the caller is not authenticated.
func (v *Validator) CheckoutRequest(req *model.CheckoutRequest, authenticated bool) error {
	if err := v.Struct(req); err != nil {
		return err
	}
	if req.CartID != "" && req.ProductID != "" {
		return model.NewValidationError(model.ErrMissingOrderSource.Message, map[string]string{
			"cart_id":    "Provide either cart_id or product_id, not both.",
			"product_id": "Provide either cart_id or product_id, not both.",
		})
	}
	if req.CartID == "" && req.ProductID == "" {
		return model.ErrMissingOrderSource
	}
	if !authenticated {
		return v.Guest(&req.GuestContact)
	}
	return nil
}

// Guest validates the six guest contact fields.
func (v *Validator) Guest(g *model.GuestContact) error {
	if err := v.Struct(g); err != nil {
		var de *model.DomainError
		if errors.As(err, &de) {
			return model.NewValidationError("guest contact details are incomplete", de.Fields)
		}
		return err
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	case "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
