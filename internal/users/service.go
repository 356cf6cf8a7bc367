package users

import (
	"context"
	"strconv"

	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (*User, error)
	UpdateUser(ctx context.Context, u User) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Auditor records user management actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user management gated by the authz engine.
type Service struct {
	repo   RepositoryPort
	audit  Auditor
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListUsers returns the users visible to the actor. Admin and principal see
// all, hod and faculty see their department, others see nothing.
func (s *Service) ListUsers(ctx context.Context, actor *authz.Actor) ([]User, error) {
	all, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return authz.FilterByScope(actor, all, func(u User) string { return u.Department }), nil
}

// GetUser returns a single user if the actor may access that record.
func (s *Service) GetUser(ctx context.Context, actor *authz.Actor, id int64) (*User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := &authz.UserRef{ID: user.ID, Role: authz.NormalizeRole(user.Role), Department: user.Department}
	allowed := authz.CanAccessUserRecord(actor, ref)
	s.logDecision(actor, "user:"+strconv.FormatInt(id, 10), "user_record_access", allowed)
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}
	return user, nil
}

// CreateUser creates an account after role-hierarchy checks. Assigning a role
// at all additionally requires the role-change grant.
func (s *Service) CreateUser(ctx context.Context, actor *authz.Actor, u User, password string) (*User, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	target := authz.NormalizeRole(u.Role)
	allowed := authz.CanManageUsers(actor.Role, target)
	s.logDecision(actor, "user:new:"+string(target), "manage_users", allowed)
	if !allowed {
		s.recordDenied(ctx, actor, "user.create", string(target))
		return nil, shared.ErrPermissionDenied
	}
	u.Role = string(target)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateUser(ctx, u, string(hash))
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "user.create", created.ID, map[string]any{"role": created.Role})
	return created, nil
}

// UpdateUser updates an account. Changing the stored role requires the
// role-change grant on top of the manage check for both old and new roles.
func (s *Service) UpdateUser(ctx context.Context, actor *authz.Actor, u User) (*User, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	existing, err := s.repo.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	currentRole := authz.NormalizeRole(existing.Role)
	newRole := authz.NormalizeRole(u.Role)

	allowed := authz.CanManageUsers(actor.Role, currentRole)
	s.logDecision(actor, "user:"+strconv.FormatInt(u.ID, 10), "manage_users", allowed)
	if !allowed {
		s.recordDenied(ctx, actor, "user.update", string(currentRole))
		return nil, shared.ErrPermissionDenied
	}
	if newRole != currentRole {
		if !authz.CanChangeRoles(actor.Role) || !authz.CanManageUsers(actor.Role, newRole) {
			s.recordDenied(ctx, actor, "user.change_role", string(newRole))
			return nil, shared.ErrPermissionDenied
		}
	}
	u.Role = string(newRole)
	updated, err := s.repo.UpdateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "user.update", updated.ID, map[string]any{"role": updated.Role})
	return updated, nil
}

// DeleteUser removes an account. Admin only, whatever the target.
func (s *Service) DeleteUser(ctx context.Context, actor *authz.Actor, id int64) error {
	if actor == nil {
		return shared.ErrPermissionDenied
	}
	allowed := authz.CanDeleteUsers(actor.Role)
	s.logDecision(actor, "user:"+strconv.FormatInt(id, 10), "delete_users", allowed)
	if !allowed {
		s.recordDenied(ctx, actor, "user.delete", strconv.FormatInt(id, 10))
		return shared.ErrPermissionDenied
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "user.delete", id, nil)
	return nil
}

func (s *Service) logDecision(actor *authz.Actor, resource, rule string, allowed bool) {
	var id int64
	var role authz.Role
	if actor != nil {
		id = actor.ID
		role = actor.Role
	}
	authz.LogDecision(s.logger, authz.Decision{ActorID: id, Role: role, Resource: resource, Rule: rule, Allowed: allowed})
}

func (s *Service) recordAudit(ctx context.Context, actor *authz.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

func (s *Service) recordDenied(ctx context.Context, actor *authz.Actor, action, target string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action + ".denied",
		Entity:   "user",
		EntityID: target,
		Meta:     map[string]any{"actor_role": string(actor.Role)},
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
