package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"lodge/shared/failure"
	"lodge/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomRequest struct {
	Name          string  `json:"name"            validate:"required,max=100"`
	Slug          string  `json:"slug"            validate:"omitempty,slug"`
	Capacity      int     `json:"capacity"        validate:"gte=1,lte=50"`
	PricePerNight float64 `json:"price_per_night" validate:"gte=0"`
	CheckIn       string  `json:"check_in"        validate:"omitempty,clock"`
	Kind          string  `json:"kind"            validate:"oneof=cabin villa loft"`
}

func validRoom() roomRequest {
	return roomRequest{Name: "Loft A", Slug: "loft-a", Capacity: 2, PricePerNight: 120, CheckIn: "14:00", Kind: "loft"}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *roomRequest)
		wantMsg string
	}{
		{name: "valid", mutate: func(*roomRequest) {}},
		{name: "missing name", mutate: func(r *roomRequest) { r.Name = "" }, wantMsg: "Name is required"},
		{name: "zero capacity", mutate: func(r *roomRequest) { r.Capacity = 0 }, wantMsg: "Capacity must be greater than or equal to 1"},
		{name: "negative price", mutate: func(r *roomRequest) { r.PricePerNight = -1 }, wantMsg: "PricePerNight must be greater than or equal to 0"},
		{name: "bad slug", mutate: func(r *roomRequest) { r.Slug = "Loft A" }, wantMsg: "Slug must contain lowercase letters, digits and single dashes only"},
		{name: "bad clock", mutate: func(r *roomRequest) { r.CheckIn = "2pm" }, wantMsg: "CheckIn must be a time of day formatted as HH:MM"},
		{name: "unknown kind", mutate: func(r *roomRequest) { r.Kind = "castle" }, wantMsg: "Kind must be one of cabin villa loft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRoom()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		var req roomRequest

		body := `{"name":"Cabin","capacity":4,"price_per_night":80,"kind":"cabin"}`
		require.NoError(t, validator.Validate(strings.NewReader(body), &req))
		assert.Equal(t, "Cabin", req.Name)
		assert.Equal(t, 4, req.Capacity)
	})

	t.Run("malformed json", func(t *testing.T) {
		var req roomRequest

		err := validator.Validate(strings.NewReader(`{"name":`), &req)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("decoded but invalid", func(t *testing.T) {
		var req roomRequest

		err := validator.Validate(strings.NewReader(`{"name":"Cabin","capacity":0,"kind":"cabin"}`), &req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Capacity")
	})
}

func TestValidateVar(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name    string
		field   any
		tag     string
		wantErr bool
	}{
		{name: "valid slug", field: "pine-ridge-2", tag: "slug"},
		{name: "slug with uppercase", field: "Pine-Ridge", tag: "slug", wantErr: true},
		{name: "slug with double dash", field: "pine--ridge", tag: "slug", wantErr: true},
		{name: "valid clock", field: "09:30", tag: "clock"},
		{name: "clock out of range", field: "25:00", tag: "clock", wantErr: true},
		{name: "uuid", field: "8c2f6f9e-4c55-4f5d-9f59-0d6a5a0f5d4b", tag: "uuid"},
		{name: "not a uuid", field: "room-1", tag: "uuid", wantErr: true},
		{name: "sniffed png allowed", field: png, tag: "mimetypes=image/png image/jpeg"},
		{name: "sniffed png rejected", field: png, tag: "mimetypes=image/webp", wantErr: true},
		{name: "empty bytes rejected", field: []byte{}, tag: "mimetypes=image/png", wantErr: true},
		{name: "bytes under size", field: make([]byte, 512), tag: "maxfilesize=1"},
		{name: "bytes over size", field: make([]byte, 2<<20), tag: "maxfilesize=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}
