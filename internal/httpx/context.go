package httpx

import (
	"context"
	"net/http"

	"paperpharmacy/internal/logging"
)

type contextKey string

const (
	visitorIDKey contextKey = "visitorID"
)

// VisitorIDFrom retrieves the anonymous visitor ID from the request context.
func VisitorIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(visitorIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithVisitor returns a new context carrying the visitor ID.
func ContextWithVisitor(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	return logging.RequestID(r.Context())
}

// ContextWithRequestID returns a new context with the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return logging.WithRequestID(ctx, requestID)
}
