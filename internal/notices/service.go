package notices

import (
	"context"
	"strconv"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for notices.
type RepositoryPort interface {
	ListNotices(ctx context.Context) ([]Notice, error)
	GetNotice(ctx context.Context, id int64) (*Notice, error)
	CreateNotice(ctx context.Context, n Notice) (*Notice, error)
	UpdateNotice(ctx context.Context, n Notice) (*Notice, error)
	DeleteNotice(ctx context.Context, id int64) error
}

// FanoutScheduler queues background delivery of a published notice.
type FanoutScheduler interface {
	EnqueueNoticeFanout(ctx context.Context, noticeID int64) error
}

// Service handles notice publication and fan-out scheduling.
type Service struct {
	repo   RepositoryPort
	fanout FanoutScheduler
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, fanout FanoutScheduler, logger *slog.Logger) *Service {
	return &Service{repo: repo, fanout: fanout, logger: logger}
}

// ListNotices returns notices visible to the actor. Branch-targeted notices
// are filtered against the actor's department for branch level roles.
func (s *Service) ListNotices(ctx context.Context, actor *authz.Actor) ([]Notice, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	all, err := s.repo.ListNotices(ctx)
	if err != nil {
		return nil, err
	}
	if authz.IsAdminOrPrincipal(actor.Role) {
		return all, nil
	}
	visible := make([]Notice, 0, len(all))
	for _, n := range all {
		if n.Audience == AudienceBranch && (actor.Department == "" || n.Branch != actor.Department) {
			continue
		}
		if n.Audience == AudienceFaculty && !authz.IsFaculty(actor.Role) && !authz.IsHOD(actor.Role) {
			continue
		}
		if n.Audience == AudienceStudents && !authz.IsStudent(actor.Role) {
			continue
		}
		visible = append(visible, n)
	}
	return visible, nil
}

// PublishNotice stores a notice and queues its fan-out. Branch level roles
// may only target their own branch.
func (s *Service) PublishNotice(ctx context.Context, actor *authz.Actor, n Notice) (*Notice, error) {
	allowed := false
	if actor != nil {
		switch {
		case authz.IsAdminOrPrincipal(actor.Role):
			allowed = true
		case authz.IsHOD(actor.Role), authz.IsFaculty(actor.Role):
			allowed = n.Audience == AudienceBranch && actor.Department != "" && n.Branch == actor.Department
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
		Resource: "notice_audience:" + string(n.Audience),
		Rule:     "notice.publish",
		Allowed:  allowed,
	})
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	n.PostedBy = actorID
	created, err := s.repo.CreateNotice(ctx, n)
	if err != nil {
		return nil, err
	}
	if s.fanout != nil {
		if err := s.fanout.EnqueueNoticeFanout(ctx, created.ID); err != nil && s.logger != nil {
			s.logger.Warn("enqueue notice fanout failed",
				slog.String("notice_id", strconv.FormatInt(created.ID, 10)), slog.Any("error", err))
		}
	}
	return created, nil
}

// UpdateNotice rewrites a notice's content. Posters may edit their own;
// campus level roles may edit any. Audience and branch never change.
func (s *Service) UpdateNotice(ctx context.Context, actor *authz.Actor, n Notice) (*Notice, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	current, err := s.repo.GetNotice(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	allowed := authz.IsAdminOrPrincipal(actor.Role) || (current.PostedBy != 0 && current.PostedBy == actor.ID)
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actor.ID,
		Role:     actor.Role,
		Resource: "notice:" + strconv.FormatInt(n.ID, 10),
		Rule:     "notice.update",
		Allowed:  allowed,
	})
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	current.Title = n.Title
	current.Body = n.Body
	current.ExpiresAt = n.ExpiresAt
	return s.repo.UpdateNotice(ctx, *current)
}

// DeleteNotice removes a notice. Posters may retract their own; campus
// level roles may remove any.
func (s *Service) DeleteNotice(ctx context.Context, actor *authz.Actor, id int64) error {
	if actor == nil {
		return shared.ErrPermissionDenied
	}
	current, err := s.repo.GetNotice(ctx, id)
	if err != nil {
		return err
	}
	allowed := authz.IsAdminOrPrincipal(actor.Role) || (current.PostedBy != 0 && current.PostedBy == actor.ID)
	authz.LogDecision(s.logger, authz.Decision{
		ActorID:  actor.ID,
		Role:     actor.Role,
		Resource: "notice:" + strconv.FormatInt(id, 10),
		Rule:     "notice.delete",
		Allowed:  allowed,
	})
	if !allowed {
		return shared.ErrPermissionDenied
	}
	return s.repo.DeleteNotice(ctx, id)
}
