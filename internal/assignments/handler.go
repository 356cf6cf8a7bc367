package assignments

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

// Handler manages assignment endpoints.
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

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageAssignments))
		r.Get("/", h.listAssignments)
		r.Get("/{id}", h.getAssignment)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.createAssignment)
		r.With(h.authz.RequireAction(authz.ActionUpdate)).Put("/{id}", h.updateAssignment)
		r.With(h.authz.RequireAction(authz.ActionDelete)).Delete("/{id}", h.deleteAssignment)
	})
}

type assignmentForm struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description"`
	Branch      string         `json:"branch" validate:"required"`
	Semester    authz.Semester `json:"semester" validate:"required"`
	Section     string         `json:"section" validate:"required"`
	CourseID    int64          `json:"course_id" validate:"required"`
	DueAt       time.Time      `json:"due_at" validate:"required"`
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	list, err := h.service.ListAssignments(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list assignments failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": list})
}

func (h *Handler) getAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assignment id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	a, err := h.service.GetAssignment(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err, "get assignment failed")
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	created, err := h.service.CreateAssignment(r.Context(), actor, form.toAssignment(0))
	if err != nil {
		h.respondError(w, err, "create assignment failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assignment id")
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	updated, err := h.service.UpdateAssignment(r.Context(), actor, form.toAssignment(id))
	if err != nil {
		h.respondError(w, err, "update assignment failed")
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assignment id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteAssignment(r.Context(), actor, id); err != nil {
		h.respondError(w, err, "delete assignment failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f assignmentForm) toAssignment(id int64) Assignment {
	return Assignment{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Branch:      f.Branch,
		Semester:    f.Semester,
		Section:     f.Section,
		CourseID:    f.CourseID,
		DueAt:       f.DueAt,
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (assignmentForm, bool) {
	var form assignmentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return form, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return form, false
	}
	return form, true
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
