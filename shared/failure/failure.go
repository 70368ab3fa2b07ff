package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that carries the HTTP status it should be rendered with.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for logging. It is never rendered to clients.
func (e *Failure) Unwrap() error {
	return e.cause
}

// BadRequest wraps err as a 400 using its message. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusBadRequest, Message: err.Error()}
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

// Validation returns a 422 carrying structured details, e.g. a rejected image verdict.
func Validation(msg string, details any) error {
	return &Failure{Code: http.StatusUnprocessableEntity, Message: msg, Details: details}
}

func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusUnauthorized, Message: msg}
}

// InternalError exposes err's message. Prefer Operation when err may hold upstream details.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusInternalServerError, Message: err.Error(), cause: err}
}

// Operation returns a 500 with a display-safe message, keeping cause only for logs.
func Operation(msg string, cause error) error {
	return &Failure{Code: http.StatusInternalServerError, Message: msg, cause: cause}
}

// NotFound takes the already formatted message, e.g. "property not found".
func NotFound(msg string) error {
	return &Failure{Code: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Failure{Code: http.StatusConflict, Message: msg}
}

// GetCode returns the status carried by err, or 500 for plain errors.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return err != nil && GetCode(err) == http.StatusNotFound
}
