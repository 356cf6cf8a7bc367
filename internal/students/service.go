package students

import (
	"context"
	"strconv"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	ListStudents(ctx context.Context) ([]Student, error)
	GetStudent(ctx context.Context, id int64) (*Student, error)
}

// Service serves student records scoped by the actor's role.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListStudents returns the students visible to the actor.
func (s *Service) ListStudents(ctx context.Context, actor *authz.Actor) ([]Student, error) {
	all, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return authz.FilterByScope(actor, all, func(st Student) string { return st.Department }), nil
}

// GetStudent returns a single student if the actor's department scope covers it.
func (s *Service) GetStudent(ctx context.Context, actor *authz.Actor, id int64) (*Student, error) {
	student, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := authz.CanAccessStudentRecord(actor, &authz.StudentRef{Department: student.Department})
	var actorID int64
	var role authz.Role
	if actor != nil {
		actorID, role = actor.ID, actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actorID,
		Role:     role,
		Resource: "student:" + strconv.FormatInt(id, 10),
		Rule:     "student_record_access",
		Allowed:  allowed,
	})
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	return student, nil
}
