package httpx

import (
	"context"
	"net/http"

	"bookish/internal/platform/crypto"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "requestID"
	errorSlotKey contextKey = "errorSlot"
)

// IdentityFrom returns the authenticated user of the request, if any.
func IdentityFrom(r *http.Request) (crypto.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(crypto.Identity)
	return id, ok
}

// ContextWithIdentity returns a new context carrying the authenticated user.
func ContextWithIdentity(ctx context.Context, id crypto.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context with the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// errorSlot lets WriteError hand the failing error to the access log.
type errorSlot struct {
	err error
}

func contextWithErrorSlot(ctx context.Context) (context.Context, *errorSlot) {
	slot := &errorSlot{}
	return context.WithValue(ctx, errorSlotKey, slot), slot
}

func recordError(r *http.Request, err error) {
	if slot, ok := r.Context().Value(errorSlotKey).(*errorSlot); ok {
		slot.err = err
	}
}
