package attendance

import (
	"context"
	"time"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for attendance.
type RepositoryPort interface {
	ListRecords(ctx context.Context, from, to time.Time) ([]Record, error)
	UpsertSheet(ctx context.Context, sheet Sheet, markedBy int64) (int, error)
	DigestForBranch(ctx context.Context, branch string, day time.Time) ([]DigestRow, error)
	Branches(ctx context.Context, day time.Time) ([]string, error)
}

// DigestScheduler queues a background digest rebuild for a branch.
type DigestScheduler interface {
	EnqueueAttendanceDigest(ctx context.Context, branch string, day time.Time) error
}

// Service handles attendance sheets gated by section scope.
type Service struct {
	repo    RepositoryPort
	digests DigestScheduler
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, digests DigestScheduler, logger *slog.Logger) *Service {
	return &Service{repo: repo, digests: digests, logger: logger}
}

// ListRecords returns attendance visible to the actor within the range.
// Students see only their own marks.
func (s *Service) ListRecords(ctx context.Context, actor *authz.Actor, from, to time.Time) ([]Record, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	all, err := s.repo.ListRecords(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if authz.IsStudent(actor.Role) {
		own := make([]Record, 0)
		for _, rec := range all {
			if rec.StudentID == actor.ID {
				own = append(own, rec)
			}
		}
		return own, nil
	}
	return authz.FilterByScope(actor, all, func(rec Record) string { return rec.Branch }), nil
}

// MarkSheet records a full class sheet. The actor must be allowed to mark
// attendance for the exact section, then a digest rebuild is queued.
func (s *Service) MarkSheet(ctx context.Context, actor *authz.Actor, sheet Sheet) (int, error) {
	ref := sheet.SectionRef()
	allowed := authz.CanMarkAttendance(actor, &ref)
	var actorID int64
	var role authz.Role
	if actor != nil {
		actorID, role = actor.ID, actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actorID,
		Role:     role,
		Resource: "section:" + ref.Key(),
		Rule:     "attendance.mark",
		Allowed:  allowed,
	})
	if !allowed {
		return 0, shared.ErrPermissionDenied
	}
	written, err := s.repo.UpsertSheet(ctx, sheet, actorID)
	if err != nil {
		return 0, err
	}
	if s.digests != nil {
		if err := s.digests.EnqueueAttendanceDigest(ctx, sheet.Branch, sheet.Date); err != nil && s.logger != nil {
			s.logger.Warn("enqueue attendance digest failed",
				slog.String("branch", sheet.Branch), slog.Any("error", err))
		}
	}
	return written, nil
}

// BranchDigest aggregates one day for a branch. Visible to anyone whose
// department scope covers the branch.
func (s *Service) BranchDigest(ctx context.Context, actor *authz.Actor, branch string, day time.Time) ([]DigestRow, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	switch {
	case authz.IsAdminOrPrincipal(actor.Role):
	case authz.IsHOD(actor.Role), authz.IsFaculty(actor.Role):
		probe := []string{branch}
		if len(authz.FilterByScope(actor, probe, func(b string) string { return b })) == 0 {
			return nil, shared.ErrPermissionDenied
		}
	default:
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.DigestForBranch(ctx, branch, day)
}
