package user

import (
	"net/http"
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

type registerReq struct {
	Username  string `json:"username" validate:"required,notblank,max=30"`
	Password  string `json:"password" validate:"required,min=5,max=72"`
	FirstName string `json:"firstName" validate:"max=30"`
	LastName  string `json:"lastName" validate:"max=30"`
	Email     string `json:"email" validate:"omitempty,email,max=60"`
	IsAdmin   bool   `json:"isAdmin"`
}

type loginReq struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type updateReq struct {
	Username      *string `json:"username" validate:"omitempty,notblank,max=30"`
	FirstName     *string `json:"firstName" validate:"omitempty,max=30"`
	LastName      *string `json:"lastName" validate:"omitempty,max=30"`
	Email         *string `json:"email" validate:"omitempty,email,max=60"`
	ProfileImgURL *string `json:"profileImgUrl" validate:"omitempty,max=500"`
	Password      *string `json:"password" validate:"omitempty,min=5,max=72"`
}

// actor resolves the caller's current account from the token's user id.
func (h *HTTPHandler) actor(r *http.Request) (User, error) {
	id, err := httpx.RequireIdentity(r)
	if err != nil {
		return User{}, err
	}
	return h.service.Actor(r.Context(), id)
}

// selfOrAdmin allows the request when the caller currently owns username or is an admin.
func (h *HTTPHandler) selfOrAdmin(r *http.Request, username string) error {
	u, err := h.actor(r)
	if err != nil {
		return err
	}
	if u.IsAdmin || u.Username == username {
		return nil
	}
	return domainerrors.Forbidden("Must be the account owner or an admin")
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if req.IsAdmin {
		if id, ok := httpx.IdentityFrom(r); !ok || !id.IsAdmin {
			httpx.WriteError(w, r, domainerrors.Forbidden("Only admins can create admin accounts"))
			return
		}
	}

	u, err := h.service.Register(r.Context(), NewUser{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	token, err := h.service.IssueToken(u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"token": token})
}

// Login handles POST /auth/login
// @Summary Exchange credentials for a token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	token, err := h.service.IssueToken(u)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"user": u, "token": token}, nil)
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"users": users}, map[string]any{"count": len(users)})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), httpx.PathParam(r, "username"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"user": u}, nil)
}

// Update handles PATCH /users/{username}
// @Summary Partially update a profile
// @Tags users
// @Security Bearer
// @Router /users/{username} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := httpx.PathParam(r, "username")
	if err := h.selfOrAdmin(r, username); err != nil {
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

	u, err := h.service.Update(r.Context(), username, Patch{
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		ProfileImgURL: req.ProfileImgURL,
		Password:      req.Password,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"user": u}, nil)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := httpx.PathParam(r, "username")
	if err := h.selfOrAdmin(r, username); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Remove(r.Context(), username); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"deleted": username}, nil)
}

// Follow handles POST /users/{username}/follow for the authenticated user.
func (h *HTTPHandler) Follow(w http.ResponseWriter, r *http.Request) {
	me, err := h.actor(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f, err := h.service.Follow(r.Context(), httpx.PathParam(r, "username"), me.Username)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"following": f})
}

func (h *HTTPHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	me, err := h.actor(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Unfollow(r.Context(), httpx.PathParam(r, "username"), me.Username); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// AcceptFollow handles POST /users/{username}/followers/{follower}/accept. Only the followed
// user can accept.
func (h *HTTPHandler) AcceptFollow(w http.ResponseWriter, r *http.Request) {
	username := httpx.PathParam(r, "username")
	me, err := h.actor(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if me.Username != username {
		httpx.WriteError(w, r, domainerrors.Forbidden("Only the followed user can accept a request"))
		return
	}
	f, err := h.service.AcceptFollow(r.Context(), username, httpx.PathParam(r, "follower"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"following": f}, nil)
}

func (h *HTTPHandler) Followers(w http.ResponseWriter, r *http.Request) {
	followers, err := h.service.GetFollowers(r.Context(), httpx.PathParam(r, "username"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"followers": followers}, nil)
}

func (h *HTTPHandler) Following(w http.ResponseWriter, r *http.Request) {
	following, err := h.service.GetFollowing(r.Context(), httpx.PathParam(r, "username"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"following": following}, nil)
}

func (h *HTTPHandler) FollowRequests(w http.ResponseWriter, r *http.Request) {
	username := httpx.PathParam(r, "username")
	if err := h.selfOrAdmin(r, username); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	requests, err := h.service.GetFollowRequests(r.Context(), username)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"requests": requests}, nil)
}
