package notices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Handler manages notice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    mw,
	}
}

// MountRoutes registers notice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageNotices))
		r.Get("/", h.listNotices)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.publishNotice)
		r.With(h.authz.RequireAction(authz.ActionUpdate)).Put("/{id}", h.updateNotice)
		r.With(h.authz.RequireAction(authz.ActionDelete)).Delete("/{id}", h.deleteNotice)
	})
}

type noticeForm struct {
	Title     string    `json:"title" validate:"required,max=200"`
	Body      string    `json:"body" validate:"required"`
	Audience  Audience  `json:"audience" validate:"required,oneof=all branch faculty students"`
	Branch    string    `json:"branch" validate:"required_if=Audience branch"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) listNotices(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	list, err := h.service.ListNotices(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list notices failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notices": list})
}

func (h *Handler) publishNotice(w http.ResponseWriter, r *http.Request) {
	var form noticeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	created, err := h.service.PublishNotice(r.Context(), actor, Notice{
		Title:     form.Title,
		Body:      form.Body,
		Audience:  form.Audience,
		Branch:    form.Branch,
		ExpiresAt: form.ExpiresAt,
	})
	if err != nil {
		h.respondError(w, err, "publish notice failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type noticeEditForm struct {
	Title     string    `json:"title" validate:"required,max=200"`
	Body      string    `json:"body" validate:"required"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) updateNotice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid notice id")
		return
	}
	var form noticeEditForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	updated, err := h.service.UpdateNotice(r.Context(), actor, Notice{
		ID:        id,
		Title:     form.Title,
		Body:      form.Body,
		ExpiresAt: form.ExpiresAt,
	})
	if err != nil {
		h.respondError(w, err, "update notice failed")
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteNotice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid notice id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteNotice(r.Context(), actor, id); err != nil {
		h.respondError(w, err, "delete notice failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, shared.ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	default:
		h.logger.Error(logMsg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
