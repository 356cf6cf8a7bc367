package users

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authz    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw, validate: validator.New()}
}

// MountRoutes registers user routes. Page access gates the whole group;
// per-record and role-hierarchy checks happen in the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageUsers))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.createUser)
		r.With(h.authz.RequireAction(authz.ActionUpdate)).Put("/{id}", h.updateUser)
		r.With(h.authz.RequireAction(authz.ActionDelete)).Delete("/{id}", h.deleteUser)
	})
	// Own record stays reachable without the users page grant.
	r.With(h.authz.RequireAuth()).Get("/me/record", h.ownRecord)
}

type userForm struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsActive   *bool  `json:"is_active"`
	Password   string `json:"password"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	users, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	meta := shared.NewPagination(page, perPage, len(users))
	users = paginate(users, meta)
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "pagination": meta})
}

// paginate slices the scope-filtered listing. Visibility filtering happens
// before this point, so offsets count only records the actor may see.
func paginate(users []User, meta shared.Pagination) []User {
	start := (meta.Page - 1) * meta.PerPage
	if start >= len(users) {
		return []User{}
	}
	end := start + meta.PerPage
	if end > len(users) {
		end = len(users)
	}
	return users[start:end]
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	user, err := h.service.GetUser(r.Context(), actor, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) ownRecord(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	if actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	user, err := h.service.GetUser(r.Context(), actor, actor.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var form userForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if form.Password == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "password is required")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	created, err := h.service.CreateUser(r.Context(), actor, User{
		Email:      form.Email,
		Name:       form.Name,
		Role:       form.Role,
		Department: form.Department,
		IsActive:   active,
	}, form.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var form userForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	updated, err := h.service.UpdateUser(r.Context(), actor, User{
		ID:         id,
		Email:      form.Email,
		Name:       form.Name,
		Role:       form.Role,
		Department: form.Department,
		IsActive:   active,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "email already in use")
	default:
		h.logger.Error("users request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
