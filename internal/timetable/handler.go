package timetable

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

// Handler manages timetable endpoints.
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

// MountRoutes registers timetable routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageTimetable))
		r.Get("/", h.listEntries)
		r.Get("/{id}", h.getEntry)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.createEntry)
		r.With(h.authz.RequireAction(authz.ActionUpdate)).Put("/{id}", h.updateEntry)
		r.With(h.authz.RequireAction(authz.ActionDelete)).Delete("/{id}", h.deleteEntry)
	})
}

type entryForm struct {
	Branch    string         `json:"branch" validate:"required"`
	Semester  authz.Semester `json:"semester" validate:"required"`
	Section   string         `json:"section" validate:"required"`
	DayOfWeek int            `json:"day_of_week" validate:"min=1,max=7"`
	Period    int            `json:"period" validate:"min=1,max=10"`
	CourseID  int64          `json:"course_id" validate:"required"`
	FacultyID int64          `json:"faculty_id" validate:"required"`
	Room      string         `json:"room"`
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	entries, err := h.service.ListEntries(r.Context(), actor, r.URL.Query().Get("branch"))
	if err != nil {
		h.respondError(w, err, "list timetable failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	entry, err := h.service.GetEntry(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err, "get timetable entry failed")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	created, err := h.service.CreateEntry(r.Context(), actor, form.toEntry(0))
	if err != nil {
		h.respondError(w, err, "create timetable entry failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromContext(r.Context())
	updated, err := h.service.UpdateEntry(r.Context(), actor, form.toEntry(id))
	if err != nil {
		h.respondError(w, err, "update timetable entry failed")
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	if err := h.service.DeleteEntry(r.Context(), actor, id); err != nil {
		h.respondError(w, err, "delete timetable entry failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f entryForm) toEntry(id int64) Entry {
	return Entry{
		ID:        id,
		Branch:    f.Branch,
		Semester:  f.Semester,
		Section:   f.Section,
		DayOfWeek: f.DayOfWeek,
		Period:    f.Period,
		CourseID:  f.CourseID,
		FacultyID: f.FacultyID,
		Room:      f.Room,
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (entryForm, bool) {
	var form entryForm
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
		httpx.Problem(w, http.StatusConflict, "Conflict", "a class is already scheduled for that slot")
	default:
		h.logger.Error(logMsg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
