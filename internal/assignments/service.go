package assignments

import (
	"context"
	"strconv"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for assignments.
type RepositoryPort interface {
	ListAssignments(ctx context.Context) ([]Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*Assignment, error)
	CreateAssignment(ctx context.Context, a Assignment) (*Assignment, error)
	UpdateAssignment(ctx context.Context, a Assignment) (*Assignment, error)
	DeleteAssignment(ctx context.Context, id int64) error
}

// Service handles assignment CRUD with authorship ownership rules.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListAssignments returns assignments scoped to the actor's department.
// Students see their branch's assignments the same way faculty do.
func (s *Service) ListAssignments(ctx context.Context, actor *authz.Actor) ([]Assignment, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	all, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if authz.IsStudent(actor.Role) {
		visible := make([]Assignment, 0)
		for _, a := range all {
			if actor.Department != "" && a.Branch == actor.Department {
				visible = append(visible, a)
			}
		}
		return visible, nil
	}
	return authz.FilterByScope(actor, all, func(a Assignment) string { return a.Branch }), nil
}

// GetAssignment returns a single assignment.
func (s *Service) GetAssignment(ctx context.Context, actor *authz.Actor, id int64) (*Assignment, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.GetAssignment(ctx, id)
}

// CreateAssignment publishes a new assignment. The actor must hold the
// target section; authorship is stamped from the actor, never the payload.
func (s *Service) CreateAssignment(ctx context.Context, actor *authz.Actor, a Assignment) (*Assignment, error) {
	ref := a.SectionRef()
	allowed := authz.CanAccessSection(actor, &ref)
	s.logDecision(actor, "section:"+ref.Key(), "assignment.create", allowed)
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	a.CreatedBy = actor.ID
	return s.repo.CreateAssignment(ctx, a)
}

// UpdateAssignment edits an assignment the actor owns or oversees.
func (s *Service) UpdateAssignment(ctx context.Context, actor *authz.Actor, a Assignment) (*Assignment, error) {
	current, err := s.repo.GetAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	ref := current.Ref()
	allowed := authz.CanModifyAssignment(actor, &ref)
	s.logDecision(actor, "assignment:"+strconv.FormatInt(a.ID, 10), "assignment.update", allowed)
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.UpdateAssignment(ctx, a)
}

// DeleteAssignment removes an assignment under the same ownership rule.
func (s *Service) DeleteAssignment(ctx context.Context, actor *authz.Actor, id int64) error {
	current, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	ref := current.Ref()
	allowed := authz.CanModifyAssignment(actor, &ref)
	s.logDecision(actor, "assignment:"+strconv.FormatInt(id, 10), "assignment.delete", allowed)
	if !allowed {
		return shared.ErrPermissionDenied
	}
	return s.repo.DeleteAssignment(ctx, id)
}

func (s *Service) logDecision(actor *authz.Actor, resource, rule string, allowed bool) {
	var actorID int64
	var role authz.Role
	if actor != nil {
		actorID, role = actor.ID, actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actorID,
		Role:     role,
		Resource: resource,
		Rule:     rule,
		Allowed:  allowed,
	})
}
