package courses

import (
	"encoding/json"
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

// Handler manages course catalogue endpoints.
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

// MountRoutes registers course routes. The catalogue is not a page of its
// own in the navigation, so reads only require an authenticated session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuth())
		r.Get("/", h.listCourses)
		r.Get("/{id}", h.getCourse)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.createCourse)
		r.With(h.authz.RequireAction(authz.ActionUpdate)).Put("/{id}", h.updateCourse)
		r.With(h.authz.RequireAction(authz.ActionDelete)).Delete("/{id}", h.deleteCourse)
	})
}

type courseForm struct {
	Code     string         `json:"code" validate:"required,max=20"`
	Title    string         `json:"title" validate:"required,max=200"`
	Branch   string         `json:"branch" validate:"required"`
	Semester authz.Semester `json:"semester" validate:"required"`
	Credits  int            `json:"credits" validate:"min=1,max=10"`
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	list, err := h.service.ListCourses(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list courses failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"courses": list})
}

func (h *Handler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid course id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	c, err := h.service.GetCourse(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err, "get course failed")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	created, err := h.service.CreateCourse(r.Context(), actor, form.toCourse(0))
	if err != nil {
		h.respondError(w, err, "create course failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid course id")
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	updated, err := h.service.UpdateCourse(r.Context(), actor, form.toCourse(id))
	if err != nil {
		h.respondError(w, err, "update course failed")
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid course id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteCourse(r.Context(), actor, id); err != nil {
		h.respondError(w, err, "delete course failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f courseForm) toCourse(id int64) Course {
	return Course{
		ID:       id,
		Code:     f.Code,
		Title:    f.Title,
		Branch:   f.Branch,
		Semester: f.Semester,
		Credits:  f.Credits,
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (courseForm, bool) {
	var form courseForm
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
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Conflict", "a course with that code already exists")
	default:
		h.logger.Error(logMsg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
