// Package tracer provides a lightweight tracing abstraction for the
// consistency core. It keeps services decoupled from OpenTelemetry APIs:
// production wires the OTel adapter, tests use the no-op tracer.
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Span names used by the consistency core.
const (
	SpanAssignWaitlistNumber = "identity.assign_waitlist_number"
	SpanPublishPass          = "pass.publish"
)

// Attribute keys.
const (
	AttrIdentityID     = "identity_id"
	AttrWaitlistNumber = "waitlist_number"
	AttrTokenMinted    = "token_minted"
)
