package readinglist

import (
	"net/http"

	domainerrors "bookish/internal/errors"
	"bookish/internal/httpx"
	"bookish/internal/platform/crypto"
	"bookish/internal/validation"
)

type HTTPHandler struct {
	service   *Service
	validator *validation.Validator
}

func NewHTTPHandler(service *Service, v *validation.Validator) *HTTPHandler {
	return &HTTPHandler{service: service, validator: v}
}

type createReq struct {
	UserID    *int64 `json:"userId" validate:"omitempty,gt=0"`
	ListName  string `json:"listName" validate:"required,notblank,max=100"`
	IsPrivate bool   `json:"isPrivate"`
}

type updateReq struct {
	ListName  *string `json:"listName" validate:"omitempty,notblank,max=100"`
	IsPrivate *bool   `json:"isPrivate"`
}

type addBookReq struct {
	BookID string `json:"bookId" validate:"required,notblank,max=32"`
}

func viewerFrom(r *http.Request) *crypto.Identity {
	if id, ok := httpx.IdentityFrom(r); ok {
		return &id
	}
	return nil
}

// ByUser handles GET /lists/users/{userId}
// @Summary Lists of a user
// @Description Private lists are only returned to their owner and admins
// @Tags lists
// @Produce json
// @Param userId path int true "User id"
// @Success 200 {object} httpx.SuccessResponse
// @Router /lists/users/{userId} [get]
func (h *HTTPHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.PathInt64(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	lists, err := h.service.GetVisible(r.Context(), userID, viewerFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"lists": lists}, map[string]any{"count": len(lists)})
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req createReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	owner := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if !actor.IsAdmin {
			httpx.WriteError(w, r, domainerrors.Forbidden("Cannot create a list for another user"))
			return
		}
		owner = *req.UserID
	}

	l, err := h.service.Create(r.Context(), NewList{UserID: owner, ListName: req.ListName, IsPrivate: req.IsPrivate})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"list": l})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	l, err := h.service.GetForViewer(r.Context(), listID, viewerFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"list": l}, nil)
}

func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req updateReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	l, err := h.service.Update(r.Context(), listID, Patch{ListName: req.ListName, IsPrivate: req.IsPrivate}, actor)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"list": l}, nil)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), listID, actor); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"deleted": listID}, nil)
}

func (h *HTTPHandler) Books(w http.ResponseWriter, r *http.Request) {
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	books, err := h.service.GetBooksOnList(r.Context(), listID, viewerFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"books": books}, map[string]any{"count": len(books)})
}

// AddBook handles POST /lists/{listId}/books. It answers 201 when the book was added and 200
// when it was already on the list.
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req addBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	added, err := h.service.AddBook(r.Context(), listID, req.BookID, actor)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	body := map[string]any{"listId": listID, "bookId": req.BookID, "added": added}
	if added {
		httpx.JSONCreated(w, r, body)
		return
	}
	httpx.JSONSuccess(w, r, body, nil)
}

func (h *HTTPHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.RequireIdentity(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	listID, err := httpx.PathInt64(r, "listId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	bookID := httpx.PathParam(r, "bookId")
	if err := h.service.RemoveBook(r.Context(), listID, bookID, actor); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"removed": bookID, "listId": listID}, nil)
}
