package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByEmail returns the account with the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, name, password_hash, role, department, is_active, created_at, updated_at
FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID returns the account with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, name, password_hash, role, department, is_active, created_at, updated_at
FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// SectionAssignments returns the sections granted to a faculty account.
// Rows imported from the legacy store may carry only the encoded key; those
// are kept in the Raw form so comparisons behave identically.
func (r *Repository) SectionAssignments(ctx context.Context, accountID int64) ([]authz.SectionAssignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT branch, semester, section, legacy_key
FROM section_assignments WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []authz.SectionAssignment
	for rows.Next() {
		var branch, semester, section, legacy *string
		if err := rows.Scan(&branch, &semester, &section, &legacy); err != nil {
			return nil, err
		}
		var a authz.SectionAssignment
		if legacy != nil && *legacy != "" {
			a.Raw = *legacy
		} else {
			if branch != nil {
				a.Branch = *branch
			}
			if semester != nil {
				a.Semester = authz.Semester(*semester)
			}
			if section != nil {
				a.Section = *section
			}
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateSession persists session metadata.
func (r *Repository) CreateSession(ctx context.Context, id string, accountID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO account_sessions (id, account_id, expires_at, ip, user_agent)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`, id, accountID, expiresAt, ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM account_sessions WHERE id = $1`, id)
	return err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Email, &acc.Name, &acc.PasswordHash, &acc.Role, &acc.Department, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}
