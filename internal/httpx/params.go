package httpx

import (
	"net/http"
	"strconv"

	domainerrors "bookish/internal/errors"

	"github.com/go-chi/chi/v5"
)

// PathParam returns a route parameter set by the router or by r.SetPathValue in tests.
func PathParam(r *http.Request, name string) string {
	if v := r.PathValue(name); v != "" {
		return v
	}
	return chi.URLParam(r, name)
}

// PathInt64 parses a positive integer route parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := PathParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.BadRequestf("Invalid %s: %q", name, raw)
	}
	return id, nil
}
