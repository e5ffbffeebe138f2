package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	domainerrors "bookish/internal/errors"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

// ErrorResponseBody carries the {message, status} pair clients read, plus a machine code.
type ErrorResponseBody struct {
	Code    domainerrors.Code         `json:"code"`
	Message string                    `json:"message"`
	Status  int                       `json:"status"`
	Details []domainerrors.FieldError `json:"details,omitempty"`
}

func buildMeta(r *http.Request, customMeta map[string]any) map[string]any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(customMeta) == 0 {
		return nil
	}
	meta := make(map[string]any, len(customMeta)+1)
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSONSuccess writes a 200 envelope.
func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, meta)})
}

// JSONCreated writes a 201 envelope.
func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, nil)})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes an error envelope with an explicit status and code.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code domainerrors.Code, message string, details []domainerrors.FieldError) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Status:  status,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// WriteError maps err onto its HTTP status. Errors without a domain code are reported as a
// generic 500 and their text is kept out of the response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	domainErr := domainerrors.From(err)
	status := domainErr.HTTPStatus()
	message := domainErr.Message
	if domainErr.Code == domainerrors.CodeUnknown {
		message = "Internal server error"
	}
	recordError(r, err)
	JSONError(w, r, status, domainErr.Code, message, domainErr.Details)
}

// DecodeJSON decodes a single JSON object from the body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domainerrors.BadRequest("Request body is required")
		case errors.As(err, &maxBytesErr):
			return domainerrors.BadRequestf("Request body must not exceed %d bytes", maxBytesErr.Limit)
		default:
			return domainerrors.BadRequest(fmt.Sprintf("Invalid request body: %v", err))
		}
	}
	if dec.More() {
		return domainerrors.BadRequest("Request body must contain a single JSON object")
	}
	return nil
}
