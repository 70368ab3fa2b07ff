package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lodge/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("page must be numeric")), code: http.StatusBadRequest, message: "page must be numeric"},
		{name: "bad request from string", err: failure.BadRequestFromString("invalid owner"), code: http.StatusBadRequest, message: "invalid owner"},
		{name: "validation", err: failure.Validation("image rejected", []string{"too small"}), code: http.StatusUnprocessableEntity, message: "image rejected"},
		{name: "unauthorized", err: failure.Unauthorized("Token has expired"), code: http.StatusUnauthorized, message: "Token has expired"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), code: http.StatusInternalServerError, message: "boom"},
		{name: "operation", err: failure.Operation("Failed to upload image", errors.New("s3: 503")), code: http.StatusInternalServerError, message: "Failed to upload image"},
		{name: "not found", err: failure.NotFound("property not found"), code: http.StatusNotFound, message: "property not found"},
		{name: "conflict", err: failure.Conflict("slug already taken"), code: http.StatusConflict, message: "slug already taken"},
		{name: "forbidden", err: failure.ForbiddenError, code: http.StatusForbidden, message: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilPassthrough(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestValidation_Details(t *testing.T) {
	err := failure.Validation("image rejected", map[string]float64{"score": 0.2})

	var fail *failure.Failure
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, map[string]float64{"score": 0.2}, fail.Details)
}

func TestOperation_KeepsCauseForLogs(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := failure.Operation("Failed to save property", cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))
	assert.Equal(t, http.StatusNotFound, failure.GetCode(fmt.Errorf("wrapped: %w", failure.NotFound("room not found"))))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, failure.IsNotFound(failure.NotFound("article not found")))
	assert.True(t, failure.IsNotFound(fmt.Errorf("load: %w", failure.NotFound("article not found"))))
	assert.False(t, failure.IsNotFound(failure.Conflict("taken")))
	assert.False(t, failure.IsNotFound(nil))
}
