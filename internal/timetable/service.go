package timetable

import (
	"context"
	"strconv"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Auditor records timetable mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RepositoryPort defines data access methods for timetable entries.
type RepositoryPort interface {
	ListEntries(ctx context.Context, branch string) ([]Entry, error)
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	CreateEntry(ctx context.Context, e Entry) (*Entry, error)
	UpdateEntry(ctx context.Context, e Entry) (*Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
}

// Service serves timetable reads and section scoped writes.
type Service struct {
	repo   RepositoryPort
	audit  Auditor
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListEntries returns timetable entries. Every authenticated actor can view
// the timetable, so the branch filter here is a convenience, not a gate.
func (s *Service) ListEntries(ctx context.Context, actor *authz.Actor, branch string) ([]Entry, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.ListEntries(ctx, branch)
}

// GetEntry returns a single timetable entry.
func (s *Service) GetEntry(ctx context.Context, actor *authz.Actor, id int64) (*Entry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := entry.SectionRef()
	if !authz.CanAccessTimetable(actor, &ref) {
		return nil, shared.ErrPermissionDenied
	}
	return entry, nil
}

// CreateEntry inserts an entry after checking the actor can modify the
// target section.
func (s *Service) CreateEntry(ctx context.Context, actor *authz.Actor, e Entry) (*Entry, error) {
	if err := s.authorizeWrite(ctx, actor, e.SectionRef(), "timetable.create"); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateEntry(ctx, e)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "timetable.create", strconv.FormatInt(created.ID, 10))
	return created, nil
}

// UpdateEntry updates an entry. The actor must be allowed to modify both the
// section the entry currently belongs to and the section it moves to.
func (s *Service) UpdateEntry(ctx context.Context, actor *authz.Actor, e Entry) (*Entry, error) {
	current, err := s.repo.GetEntry(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(ctx, actor, current.SectionRef(), "timetable.update"); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(ctx, actor, e.SectionRef(), "timetable.update"); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateEntry(ctx, e)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "timetable.update", strconv.FormatInt(e.ID, 10))
	return updated, nil
}

// DeleteEntry removes an entry. Role level delete permission is enforced at
// the router; this re-checks section scope.
func (s *Service) DeleteEntry(ctx context.Context, actor *authz.Actor, id int64) error {
	current, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(ctx, actor, current.SectionRef(), "timetable.delete"); err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "timetable.delete", strconv.FormatInt(id, 10))
	return nil
}

func (s *Service) authorizeWrite(ctx context.Context, actor *authz.Actor, ref authz.SectionRef, rule string) error {
	allowed := authz.CanModifyTimetable(actor, &ref)
	var actorID int64
	var role authz.Role
	if actor != nil {
		actorID, role = actor.ID, actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actorID,
		Role:     role,
		Resource: "section:" + ref.Key(),
		Rule:     rule,
		Allowed:  allowed,
	})
	if !allowed {
		s.recordAudit(ctx, actor, rule+".denied", ref.Key())
		return shared.ErrPermissionDenied
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor *authz.Actor, action, target string) {
	if s.audit == nil || actor == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "timetable_entry",
		EntityID: target,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
