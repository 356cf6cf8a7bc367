package notices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const noticeColumns = `id, title, body, audience, branch, posted_by, posted_at, expires_at`

// ListNotices returns live notices, newest first.
func (r *Repository) ListNotices(ctx context.Context) ([]Notice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+noticeColumns+` FROM notices WHERE expires_at IS NULL OR expires_at > NOW() ORDER BY posted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notice
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.Branch, &n.PostedBy, &n.PostedAt, &n.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNotice returns a single notice by id.
func (r *Repository) GetNotice(ctx context.Context, id int64) (*Notice, error) {
	var n Notice
	err := r.pool.QueryRow(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id).
		Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.Branch, &n.PostedBy, &n.PostedAt, &n.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// CreateNotice inserts a notice.
func (r *Repository) CreateNotice(ctx context.Context, n Notice) (*Notice, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO notices (title, body, audience, branch, posted_by, expires_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, '0001-01-01T00:00:00Z'::timestamptz))
RETURNING `+noticeColumns, n.Title, n.Body, n.Audience, n.Branch, n.PostedBy, n.ExpiresAt).
		Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.Branch, &n.PostedBy, &n.PostedAt, &n.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNotice rewrites a notice's content. Audience, branch and poster are
// fixed at publication; re-targeting would require a fresh fan-out.
func (r *Repository) UpdateNotice(ctx context.Context, n Notice) (*Notice, error) {
	err := r.pool.QueryRow(ctx, `UPDATE notices SET title = $2, body = $3, expires_at = NULLIF($4, '0001-01-01T00:00:00Z'::timestamptz)
WHERE id = $1
RETURNING `+noticeColumns, n.ID, n.Title, n.Body, n.ExpiresAt).
		Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.Branch, &n.PostedBy, &n.PostedAt, &n.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// DeleteNotice removes a notice.
func (r *Repository) DeleteNotice(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecipientEmails resolves the e-mail addresses a notice fans out to.
func (r *Repository) RecipientEmails(ctx context.Context, n Notice) ([]string, error) {
	query := `SELECT email FROM accounts WHERE is_active`
	args := []any{}
	switch n.Audience {
	case AudienceBranch:
		query += ` AND department = $1`
		args = append(args, n.Branch)
	case AudienceFaculty:
		query += ` AND role IN ('faculty', 'hod')`
	case AudienceStudents:
		query += ` AND role = 'student'`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY email`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
