package timetable

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

const entryColumns = `id, branch, semester, section, day_of_week, period, course_id, faculty_id, room, created_at, updated_at`

// ListEntries returns timetable entries, optionally narrowed to a branch.
func (r *Repository) ListEntries(ctx context.Context, branch string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM timetable_entries ORDER BY branch, semester, section, day_of_week, period`
	args := []any{}
	if branch != "" {
		query = `SELECT ` + entryColumns + ` FROM timetable_entries WHERE branch = $1 ORDER BY semester, section, day_of_week, period`
		args = append(args, branch)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Branch, &e.Semester, &e.Section, &e.DayOfWeek, &e.Period, &e.CourseID, &e.FacultyID, &e.Room, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single entry by id.
func (r *Repository) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM timetable_entries WHERE id = $1`, id).
		Scan(&e.ID, &e.Branch, &e.Semester, &e.Section, &e.DayOfWeek, &e.Period, &e.CourseID, &e.FacultyID, &e.Room, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts a timetable entry.
func (r *Repository) CreateEntry(ctx context.Context, e Entry) (*Entry, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO timetable_entries (branch, semester, section, day_of_week, period, course_id, faculty_id, room)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+entryColumns, e.Branch, e.Semester, e.Section, e.DayOfWeek, e.Period, e.CourseID, e.FacultyID, e.Room).
		Scan(&e.ID, &e.Branch, &e.Semester, &e.Section, &e.DayOfWeek, &e.Period, &e.CourseID, &e.FacultyID, &e.Room, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEntry updates a timetable entry.
func (r *Repository) UpdateEntry(ctx context.Context, e Entry) (*Entry, error) {
	err := r.pool.QueryRow(ctx, `UPDATE timetable_entries
SET branch = $2, semester = $3, section = $4, day_of_week = $5, period = $6, course_id = $7, faculty_id = $8, room = $9, updated_at = NOW()
WHERE id = $1
RETURNING `+entryColumns, e.ID, e.Branch, e.Semester, e.Section, e.DayOfWeek, e.Period, e.CourseID, e.FacultyID, e.Room).
		Scan(&e.ID, &e.Branch, &e.Semester, &e.Section, &e.DayOfWeek, &e.Period, &e.CourseID, &e.FacultyID, &e.Room, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes a timetable entry.
func (r *Repository) DeleteEntry(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
