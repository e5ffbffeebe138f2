package httpx

import (
	"net/http"
	"strings"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"
)

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", false
	}
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:]), true
	}
	return authHeader, true
}

// AuthMiddleware requires a valid token: a missing Authorization header is 401, a token that
// does not verify is 403.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				JSONError(w, r, http.StatusUnauthorized, domainerrors.CodeUnauthenticated, "Authentication required", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusForbidden, domainerrors.CodeForbidden, "Invalid or expired token", nil)
				return
			}

			ctx := ContextWithIdentity(r.Context(), claims.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := crypto.ParseToken(secret, token); err == nil {
					r = r.WithContext(ContextWithIdentity(r.Context(), claims.Identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity returns the authenticated user or an UNAUTHENTICATED error.
func RequireIdentity(r *http.Request) (crypto.Identity, error) {
	id, ok := IdentityFrom(r)
	if !ok {
		return crypto.Identity{}, domainerrors.Unauthenticated("Authentication required")
	}
	return id, nil
}

// RequireAdmin allows only authenticated admins.
func RequireAdmin(r *http.Request) (crypto.Identity, error) {
	id, err := RequireIdentity(r)
	if err != nil {
		return id, err
	}
	if !id.IsAdmin {
		return id, domainerrors.Forbidden("Admin access required")
	}
	return id, nil
}
