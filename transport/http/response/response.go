// Package response writes the JSON envelopes returned by every handler.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/logger"

	"github.com/rs/zerolog/log"
)

// Data wraps a successful payload.
type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error   *string `json:"error,omitempty"`
	Details any     `json:"details,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError renders a *failure.Failure with its own code. Anything else becomes an opaque 500.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) {
		logger.ErrorWithStack(err)
		writeError(writer, http.StatusInternalServerError, constant.ResponseErrorInternal, nil)

		return
	}

	message := fail.Message

	if cause := fail.Unwrap(); cause != nil {
		log.Error().Err(cause).Int("code", fail.Code).Msg(fail.Message)

		// an InternalError carries the raw cause as its message
		if message == cause.Error() {
			message = constant.ResponseErrorInternal
		}
	}

	writeError(writer, fail.Code, message, fail.Details)
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func writeError(writer http.ResponseWriter, code int, message string, details any) {
	write(writer, code, Error{Error: &message, Details: details})
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write response body")
	}
}
