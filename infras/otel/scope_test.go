package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.Value
	}{
		{"bool", true, attribute.BoolValue(true)},
		{"string", "rooms", attribute.StringValue("rooms")},
		{"int", 3, attribute.IntValue(3)},
		{"int64", int64(1024), attribute.Int64Value(1024)},
		{"float64", 0.75, attribute.Float64Value(0.75)},
		{"duration", 1500 * time.Millisecond, attribute.Int64Value(1500)},
		{"strings", []string{"a", "b"}, attribute.StringSliceValue([]string{"a", "b"})},
		{"stringer", errStringer{}, attribute.StringValue("stringer")},
		{"fallback", struct{ N int }{N: 1}, attribute.StringValue("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := toAttribute("key", tt.value)

			assert.Equal(t, attribute.Key("key"), kv.Key)
			assert.Equal(t, tt.want, kv.Value)
		})
	}
}

type errStringer struct{}

func (errStringer) String() string { return "stringer" }

func TestSpanScope_TraceErrorIgnoresNil(t *testing.T) {
	scope := NewScope(oteltrace.SpanFromContext(context.Background()))

	assert.NotPanics(t, func() {
		scope.TraceError(nil)
		scope.TraceIfError(errors.New("boom"))
		scope.SetAttributes(map[string]any{"a": 1, "b": "x"})
		scope.End()
	})
}
