package courses

import (
	"context"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for courses.
type RepositoryPort interface {
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (*Course, error)
	CreateCourse(ctx context.Context, c Course) (*Course, error)
	UpdateCourse(ctx context.Context, c Course) (*Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// Service serves the course catalogue.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListCourses returns the catalogue. Every authenticated actor may browse it.
func (s *Service) ListCourses(ctx context.Context, actor *authz.Actor) ([]Course, error) {
	if !authz.CanAccessCourse(actor) {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.ListCourses(ctx)
}

// GetCourse returns a single course.
func (s *Service) GetCourse(ctx context.Context, actor *authz.Actor, id int64) (*Course, error) {
	if !authz.CanAccessCourse(actor) {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.GetCourse(ctx, id)
}

// CreateCourse adds a catalogue entry. Branch level roles may only touch
// their own branch's catalogue.
func (s *Service) CreateCourse(ctx context.Context, actor *authz.Actor, c Course) (*Course, error) {
	if err := s.authorizeWrite(actor, c.Branch, "course.create"); err != nil {
		return nil, err
	}
	return s.repo.CreateCourse(ctx, c)
}

// UpdateCourse edits a catalogue entry.
func (s *Service) UpdateCourse(ctx context.Context, actor *authz.Actor, c Course) (*Course, error) {
	current, err := s.repo.GetCourse(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(actor, current.Branch, "course.update"); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(actor, c.Branch, "course.update"); err != nil {
		return nil, err
	}
	return s.repo.UpdateCourse(ctx, c)
}

// DeleteCourse removes a catalogue entry.
func (s *Service) DeleteCourse(ctx context.Context, actor *authz.Actor, id int64) error {
	current, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(actor, current.Branch, "course.delete"); err != nil {
		return err
	}
	return s.repo.DeleteCourse(ctx, id)
}

func (s *Service) authorizeWrite(actor *authz.Actor, branch, rule string) error {
	allowed := false
	if actor != nil {
		switch {
		case authz.IsAdminOrPrincipal(actor.Role):
			allowed = true
		case authz.IsHOD(actor.Role):
			allowed = len(authz.FilterByScope(actor, []string{branch}, func(b string) string { return b })) == 1
		}
	}
	var actorID int64
	var role authz.Role
	if actor != nil {
		actorID, role = actor.ID, actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actorID,
		Role:     role,
		Resource: "course_branch:" + branch,
		Rule:     rule,
		Allowed:  allowed,
	})
	if !allowed {
		return shared.ErrPermissionDenied
	}
	return nil
}
