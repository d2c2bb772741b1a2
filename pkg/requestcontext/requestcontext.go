// Package requestcontext carries per-request values (request ID, request time)
// through context without leaking transport concerns into services.
package requestcontext

import (
	"context"
	"time"
)

type requestIDKey struct{}
type requestTimeKey struct{}
type deviceKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithDevice returns a context carrying a short description of the client
// device ("Chrome on macOS"), used for audit attribution.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey{}, device)
}

// Device returns the client device description, or "" if unset.
func Device(ctx context.Context) string {
	if v, ok := ctx.Value(deviceKey{}).(string); ok {
		return v
	}
	return ""
}

// WithNow pins the request time on the context. Tests use this to make
// timestamp stamping deterministic.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, now)
}

// Now returns the pinned request time, falling back to the wall clock in UTC.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now().UTC()
}
