package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/respond"
)

// Validator adapts go-playground/validator to echo's Validator interface.
// Bind it once on the echo instance; handlers then call c.Validate on bound
// request DTOs.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bindAndValidate binds the JSON body into dto and validates it, writing the
// field-error response itself on failure.  Returns false when the request has
// already been answered.
func bindAndValidate(c echo.Context, dto any) (ok bool, err error) {
	if err := c.Bind(dto); err != nil {
		return false, respond.Error(c, 400, "invalid request body")
	}
	if err := c.Validate(dto); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]respond.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, respond.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
			}
			return false, respond.Fields(c, fields)
		}
		return false, respond.Error(c, 400, "invalid request body")
	}
	return true, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
