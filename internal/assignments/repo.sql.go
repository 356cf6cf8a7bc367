package assignments

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

const assignmentColumns = `id, title, description, branch, semester, section, course_id, due_at, created_by, created_at, updated_at`

// ListAssignments returns assignments ordered by due date.
func (r *Repository) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY due_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Branch, &a.Semester, &a.Section, &a.CourseID, &a.DueAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAssignment returns a single assignment by id.
func (r *Repository) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id).
		Scan(&a.ID, &a.Title, &a.Description, &a.Branch, &a.Semester, &a.Section, &a.CourseID, &a.DueAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateAssignment inserts an assignment.
func (r *Repository) CreateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO assignments (title, description, branch, semester, section, course_id, due_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+assignmentColumns, a.Title, a.Description, a.Branch, a.Semester, a.Section, a.CourseID, a.DueAt, a.CreatedBy).
		Scan(&a.ID, &a.Title, &a.Description, &a.Branch, &a.Semester, &a.Section, &a.CourseID, &a.DueAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAssignment updates mutable fields. Authorship never changes.
func (r *Repository) UpdateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	err := r.pool.QueryRow(ctx, `UPDATE assignments
SET title = $2, description = $3, due_at = $4, updated_at = NOW()
WHERE id = $1
RETURNING `+assignmentColumns, a.ID, a.Title, a.Description, a.DueAt).
		Scan(&a.ID, &a.Title, &a.Description, &a.Branch, &a.Semester, &a.Section, &a.CourseID, &a.DueAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// DeleteAssignment removes an assignment.
func (r *Repository) DeleteAssignment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
