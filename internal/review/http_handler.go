package review

import (
	"net/http"

	"bookish/internal/httpx"
	"bookish/internal/validation"
)

type HTTPHandler struct {
	service   *Service
	validator *validation.Validator
}

func NewHTTPHandler(service *Service, v *validation.Validator) *HTTPHandler {
	return &HTTPHandler{service: service, validator: v}
}

type reviewReq struct {
	ReviewText string `json:"reviewText" validate:"required,notblank,max=5000"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
}

// List handles GET /books/{olid}/reviews
// @Summary Reviews of a book
// @Tags reviews
// @Produce json
// @Param olid path string true "Open Library id"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books/{olid}/reviews [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), httpx.PathParam(r, "olid"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"data":      summary.Reviews,
		"avgRating": summary.AvgRating,
	}, map[string]any{"count": len(summary.Reviews)})
}

// Create handles POST /books/{olid}/reviews
// @Summary Review a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /books/{olid}/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req reviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Add(r.Context(), httpx.PathParam(r, "olid"), actor, req.ReviewText, req.Rating)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"review": rv})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	reviewID, err := httpx.PathInt64(r, "reviewId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.service.Get(r.Context(), httpx.PathParam(r, "olid"), reviewID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"review": d}, nil)
}

func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	reviewID, err := httpx.PathInt64(r, "reviewId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req reviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Update(r.Context(), httpx.PathParam(r, "olid"), reviewID, actor, req.ReviewText, req.Rating)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"review": rv}, nil)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	reviewID, err := httpx.PathInt64(r, "reviewId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), httpx.PathParam(r, "olid"), reviewID, actor); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"deleted": reviewID}, nil)
}
