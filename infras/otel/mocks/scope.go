package mocks

import "lodge/infras/otel"

type scope struct{}

func NewScope() otel.Scope {
	return scope{}
}

func (scope) End()                         {}
func (scope) TraceError(error)             {}
func (scope) TraceIfError(error)           {}
func (scope) AddEvent(string)              {}
func (scope) SetAttribute(string, any)     {}
func (scope) SetAttributes(map[string]any) {}
