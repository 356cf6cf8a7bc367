package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, student_id, branch, semester, section, course_id, date, period, status, marked_by, created_at, updated_at`

// ListRecords returns attendance records for a date range.
func (r *Repository) ListRecords(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM attendance_records WHERE date >= $1 AND date <= $2 ORDER BY date, branch, semester, section, period`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// UpsertSheet writes a full class sheet in one transaction. Re-marking the
// same student, date and period overwrites the earlier status.
func (r *Repository) UpsertSheet(ctx context.Context, sheet Sheet, markedBy int64) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	written := 0
	for _, mark := range sheet.Marks {
		_, err := tx.Exec(ctx, `INSERT INTO attendance_records (student_id, branch, semester, section, course_id, date, period, status, marked_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, date, period)
DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = NOW()`,
			mark.StudentID, sheet.Branch, sheet.Semester, sheet.Section, sheet.CourseID, sheet.Date, sheet.Period, mark.Status, markedBy)
		if err != nil {
			return 0, err
		}
		written++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

// DigestForBranch aggregates one day of attendance for a branch, grouped by
// semester and section.
func (r *Repository) DigestForBranch(ctx context.Context, branch string, day time.Time) ([]DigestRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT branch, semester, section,
  COUNT(*) FILTER (WHERE status = 'present'),
  COUNT(*) FILTER (WHERE status = 'absent'),
  COUNT(*) FILTER (WHERE status = 'late')
FROM attendance_records
WHERE branch = $1 AND date = $2
GROUP BY branch, semester, section
ORDER BY semester, section`, branch, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DigestRow
	for rows.Next() {
		var d DigestRow
		if err := rows.Scan(&d.Branch, &d.Semester, &d.Section, &d.Present, &d.Absent, &d.Late); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveDigest materializes precomputed digest rows for a day. Each row is
// upserted so repeated rebuilds stay idempotent.
func (r *Repository) SaveDigest(ctx context.Context, day time.Time, rows []DigestRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, d := range rows {
		_, err := tx.Exec(ctx, `INSERT INTO attendance_digests (branch, semester, section, date, present, absent, late)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (branch, semester, section, date)
DO UPDATE SET present = EXCLUDED.present, absent = EXCLUDED.absent, late = EXCLUDED.late, updated_at = NOW()`,
			d.Branch, d.Semester, d.Section, day, d.Present, d.Absent, d.Late)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Branches lists the distinct branches with attendance on the given day.
func (r *Repository) Branches(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT branch FROM attendance_records WHERE date = $1 ORDER BY branch`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Branch, &rec.Semester, &rec.Section, &rec.CourseID, &rec.Date, &rec.Period, &rec.Status, &rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
