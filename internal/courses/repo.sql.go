package courses

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
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

const courseColumns = `id, code, title, branch, semester, credits, created_at, updated_at`

// ListCourses returns the full catalogue ordered by code.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Branch, &c.Semester, &c.Credits, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCourse returns a single course by id.
func (r *Repository) GetCourse(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Title, &c.Branch, &c.Semester, &c.Credits, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCourse inserts a catalogue entry. Codes are unique.
func (r *Repository) CreateCourse(ctx context.Context, c Course) (*Course, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO courses (code, title, branch, semester, credits)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+courseColumns, c.Code, c.Title, c.Branch, c.Semester, c.Credits).
		Scan(&c.ID, &c.Code, &c.Title, &c.Branch, &c.Semester, &c.Credits, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &c, nil
}

// UpdateCourse updates a catalogue entry.
func (r *Repository) UpdateCourse(ctx context.Context, c Course) (*Course, error) {
	err := r.pool.QueryRow(ctx, `UPDATE courses
SET code = $2, title = $3, branch = $4, semester = $5, credits = $6, updated_at = NOW()
WHERE id = $1
RETURNING `+courseColumns, c.ID, c.Code, c.Title, c.Branch, c.Semester, c.Credits).
		Scan(&c.ID, &c.Code, &c.Title, &c.Branch, &c.Semester, &c.Credits, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCourse removes a catalogue entry.
func (r *Repository) DeleteCourse(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
