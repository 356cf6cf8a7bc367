package identity

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// RepositoryPort defines the data access the service needs.
type RepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	SectionAssignments(ctx context.Context, accountID int64) ([]authz.SectionAssignment, error)
	CreateSession(ctx context.Context, id string, accountID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// Service wraps authentication business rules and acts as the authz
// ActorSource for the rest of the application.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a new Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Accounts whose role is
// not allowed into the admin panel are rejected even with valid credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !authz.IsRoleAllowed(account.Role) {
		return nil, shared.ErrPermissionDenied
	}
	return account, nil
}

// ActorByID resolves an account into an authz.Actor. Section assignments are
// loaded only for faculty; other roles never consult them.
func (s *Service) ActorByID(ctx context.Context, id int64) (*authz.Actor, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, shared.ErrNotFound
	}
	actor := &authz.Actor{
		ID:         account.ID,
		Role:       authz.NormalizeRole(account.Role),
		Department: account.Department,
	}
	if actor.Role == authz.RoleFaculty {
		assignments, err := s.repo.SectionAssignments(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		actor.AssignedSections = assignments
	}
	return actor, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, accountID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, accountID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
