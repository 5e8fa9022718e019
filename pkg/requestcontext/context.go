// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by registry services. By keeping this
// package free of net/http dependencies, services can import only what they need
// without pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	height := requestcontext.Height(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCaller(ctx, caller)
//	ctx = requestcontext.WithHeight(ctx, height)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithCaller(ctx, "verifier-1")
//	ctx = requestcontext.WithHeight(ctx, 1000)
package requestcontext

import (
	"context"

	id "fides/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey    struct{}
	heightKey    struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	requestIDKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCaller    = callerKey{}
	ContextKeyHeight    = heightKey{}
	ContextKeyClientIP  = clientIPKey{}
	ContextKeyUserAgent = userAgentKey{}
	ContextKeyRequestID = requestIDKey{}
)

// -----------------------------------------------------------------------------
// Caller (authenticated principal)
// -----------------------------------------------------------------------------

// Caller retrieves the authenticated principal from the context.
// Returns the zero Identity if not set; services treat that as unauthorized.
func Caller(ctx context.Context) id.Identity {
	if caller, ok := ctx.Value(ContextKeyCaller).(id.Identity); ok {
		return caller
	}
	return ""
}

// WithCaller injects an authenticated principal into the context.
func WithCaller(ctx context.Context, caller id.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// -----------------------------------------------------------------------------
// Logical clock height
// -----------------------------------------------------------------------------

// Height retrieves the request-scoped logical clock height from the context.
// Returns 0 if not set; the middleware stamps every request, so 0 only shows
// up in tests that deliberately omit it.
func Height(ctx context.Context) uint64 {
	if h, ok := ctx.Value(ContextKeyHeight).(uint64); ok {
		return h
	}
	return 0
}

// WithHeight injects a logical clock height into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Replaying recorded operations at a fixed height
func WithHeight(ctx context.Context, height uint64) context.Context {
	return context.WithValue(ctx, ContextKeyHeight, height)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
