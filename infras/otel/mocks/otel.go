// Package mocks provides no-op tracing for tests.
package mocks

import (
	"context"

	"lodge/infras/otel"
)

type tracer struct{}

func NewOtel() otel.Otel {
	return tracer{}
}

func (tracer) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}
