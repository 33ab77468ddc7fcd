// Package respond renders the API's uniform response shapes.  Every
// authentication, authorization, not-found and internal failure uses the same
// {status, message, timestamp} envelope; structural validation failures use a
// list of {field, message} pairs.  Internal error representations never leak
// past this boundary.
package respond

import (
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// FieldError describes a single structural violation in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrorBody wraps the list of field violations for a 400 response.
type FieldErrorBody struct {
	FieldErrors []FieldError `json:"fieldErrors"`
}

// Success is the body returned by delete-style operations that have no
// resource to echo back.
type Success struct {
	Message string `json:"message"`
}

// Error writes the uniform error envelope with the given status code.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Fields writes a 400 with the list of field violations.
func Fields(c echo.Context, errs []FieldError) error {
	return c.JSON(400, FieldErrorBody{FieldErrors: errs})
}
