package book

import (
	"net/http"
	"strconv"
	"strings"

	domainerrors "bookish/internal/errors"
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

type createReq struct {
	OLID        string `json:"olid" validate:"required,notblank,max=32"`
	Title       string `json:"title" validate:"required,notblank,max=500"`
	Author      string `json:"author" validate:"max=500"`
	CoverURL    string `json:"coverUrl" validate:"max=500"`
	Description string `json:"description"`
}

type tagReq struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

// List handles GET /books
// @Summary List stored books
// @Description Ordered by title then author; ?author= filters by author name
// @Tags books
// @Produce json
// @Param author query string false "Author name or ILIKE pattern"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		books []Book
		err   error
	)
	if author := strings.TrimSpace(r.URL.Query().Get("author")); author != "" {
		books, err = h.service.GetByAuthor(r.Context(), author)
	} else {
		books, err = h.service.GetAll(r.Context())
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"books": books}, map[string]any{"count": len(books)})
}

// Get handles GET /books/{olid}
// @Summary Get a book, importing it from Open Library on first access
// @Tags books
// @Produce json
// @Param olid path string true "Open Library id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/{olid} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), httpx.PathParam(r, "olid"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"book": b}, nil)
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.RequireAdmin(r); err != nil {
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

	b, err := h.service.Create(r.Context(), Book{
		OLID:        req.OLID,
		Title:       req.Title,
		Author:      req.Author,
		CoverURL:    req.CoverURL,
		Description: req.Description,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"book": b})
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.RequireAdmin(r); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	olid := httpx.PathParam(r, "olid")
	if err := h.service.Delete(r.Context(), olid); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"deleted": olid}, nil)
}

// Search handles GET /books/search?q=
// @Summary Search Open Library by title
// @Tags books
// @Param q query string true "Title words"
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"results": res}, nil)
}

func (h *HTTPHandler) Subject(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetBooksBySubject(r.Context(), httpx.PathParam(r, "subject"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"subject": res}, nil)
}

func (h *HTTPHandler) Author(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.GetAuthor(r.Context(), httpx.PathParam(r, "authorId"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"author": name}, nil)
}

func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"genres": genres}, nil)
}

func (h *HTTPHandler) GenreBooks(w http.ResponseWriter, r *http.Request) {
	raw := httpx.PathParam(r, "genreId")
	genreID, err := strconv.Atoi(raw)
	if err != nil || genreID <= 0 {
		httpx.WriteError(w, r, domainerrors.BadRequestf("Invalid genreId: %q", raw))
		return
	}
	books, err := h.service.GetByGenre(r.Context(), genreID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"books": books}, map[string]any{"count": len(books)})
}

func (h *HTTPHandler) TagGenre(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.RequireAdmin(r); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req tagReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	g, err := h.service.TagGenre(r.Context(), httpx.PathParam(r, "olid"), req.Name)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"genre": g})
}
