package students

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Handler manages student record endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers student routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageStudents))
		r.Get("/", h.listStudents)
		r.Get("/{id}", h.getStudent)
	})
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	students, err := h.service.ListStudents(r.Context(), actor)
	if err != nil {
		h.logger.Error("list students failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid student id")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	student, err := h.service.GetStudent(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrPermissionDenied):
			httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.UserSafeMessage(err))
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
		default:
			h.logger.Error("get student failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}
