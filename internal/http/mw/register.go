// Package mw provides middleware and registration helpers for the elgatod HTTP API.
package mw

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// OperationOption is a function that modifies a Huma operation.
type OperationOption func(*huma.Operation)

// WithTags adds tags to the operation.
func WithTags(tags ...string) OperationOption {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tags...)
	}
}

// WithSummary sets the operation summary.
func WithSummary(summary string) OperationOption {
	return func(op *huma.Operation) {
		op.Summary = summary
	}
}

// WithDescription sets the operation description.
func WithDescription(desc string) OperationOption {
	return func(op *huma.Operation) {
		op.Description = desc
	}
}

// WithOperationID sets a custom operation ID.
func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) {
		op.OperationID = id
	}
}

// WithHidden hides the operation from OpenAPI documentation.
func WithHidden() OperationOption {
	return func(op *huma.Operation) {
		op.Hidden = true
	}
}

// WithDefaultStatus sets the default HTTP status code for successful responses.
func WithDefaultStatus(status int) OperationOption {
	return func(op *huma.Operation) {
		op.DefaultStatus = status
	}
}

func register[I, O any](api huma.API, method, path string, handler func(ctx context.Context, input *I) (*O, error), opts []OperationOption) {
	op := huma.Operation{
		Method: method,
		Path:   path,
	}
	for _, opt := range opts {
		opt(&op)
	}
	huma.Register(api, op, handler)
}

// Get registers a GET endpoint.
func Get[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodGet, path, handler, opts)
}

// Post registers a POST endpoint.
func Post[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodPost, path, handler, opts)
}

// Put registers a PUT endpoint.
func Put[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodPut, path, handler, opts)
}

// HiddenGet registers a GET endpoint that won't appear in OpenAPI docs.
// Used for internal endpoints like health probes.
func HiddenGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error)) {
	register(api, http.MethodGet, path, handler, []OperationOption{WithHidden()})
}
