package attendance

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Handler manages attendance endpoints.
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

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePage(authz.PageAttendance))
		r.Get("/", h.listRecords)
		r.Get("/digest", h.branchDigest)
		r.With(h.authz.RequireAction(authz.ActionCreate)).Post("/", h.markSheet)
	})
}

type sheetForm struct {
	Branch   string         `json:"branch" validate:"required"`
	Semester authz.Semester `json:"semester" validate:"required"`
	Section  string         `json:"section" validate:"required"`
	CourseID int64          `json:"course_id" validate:"required"`
	Date     time.Time      `json:"date" validate:"required"`
	Period   int            `json:"period" validate:"min=1,max=10"`
	Marks    []Mark         `json:"marks" validate:"required,min=1,dive"`
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	records, err := h.service.ListRecords(r.Context(), actor, from, to)
	if err != nil {
		h.respondError(w, err, "list attendance failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) markSheet(w http.ResponseWriter, r *http.Request) {
	var form sheetForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	actor := authz.ActorFromContext(r.Context())
	written, err := h.service.MarkSheet(r.Context(), actor, Sheet{
		Branch:   form.Branch,
		Semester: form.Semester,
		Section:  form.Section,
		CourseID: form.CourseID,
		Date:     form.Date,
		Period:   form.Period,
		Marks:    form.Marks,
	})
	if err != nil {
		h.respondError(w, err, "mark attendance failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"written": written})
}

func (h *Handler) branchDigest(w http.ResponseWriter, r *http.Request) {
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "branch is required")
		return
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	actor := authz.ActorFromContext(r.Context())
	rows, err := h.service.BranchDigest(r.Context(), actor, branch, day)
	if err != nil {
		h.respondError(w, err, "attendance digest failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"branch": branch, "date": day.Format("2006-01-02"), "rows": rows})
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("to must be YYYY-MM-DD")
		}
		to = parsed
	}
	return from, to, nil
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
