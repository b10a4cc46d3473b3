// Package trace carries a request id through a command run so that every
// log line and outgoing API call it causes can be correlated.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID is sent with every backend API request.
	HeaderRequestID = "X-Request-ID"
)

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// WithRequestID returns ctx carrying id. An empty id is replaced with a
// fresh one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = GenerateRequestID()
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

// Ensure returns ctx unchanged when it already has a request ID, otherwise
// a child context with a new one.
func Ensure(ctx context.Context) context.Context {
	if GetRequestID(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, "")
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
