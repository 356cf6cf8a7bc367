package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

type mockRepository struct {
	records []Record
	sheets  []Sheet
}

func (m *mockRepository) ListRecords(ctx context.Context, from, to time.Time) ([]Record, error) {
	return m.records, nil
}

func (m *mockRepository) UpsertSheet(ctx context.Context, sheet Sheet, markedBy int64) (int, error) {
	m.sheets = append(m.sheets, sheet)
	return len(sheet.Marks), nil
}

func (m *mockRepository) DigestForBranch(ctx context.Context, branch string, day time.Time) ([]DigestRow, error) {
	return []DigestRow{{Branch: branch, Semester: "3", Section: "A", Present: 40, Absent: 2}}, nil
}

func (m *mockRepository) Branches(ctx context.Context, day time.Time) ([]string, error) {
	return []string{"CSE"}, nil
}

type mockScheduler struct {
	enqueued []string
}

func (m *mockScheduler) EnqueueAttendanceDigest(ctx context.Context, branch string, day time.Time) error {
	m.enqueued = append(m.enqueued, branch)
	return nil
}

func sampleSheet() Sheet {
	return Sheet{
		Branch: "CSE", Semester: "3", Section: "A", CourseID: 10,
		Date:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Period: 2,
		Marks:  []Mark{{StudentID: 100, Status: StatusPresent}, {StudentID: 101, Status: StatusAbsent}},
	}
}

func TestMarkSheet_FacultyAssignedSection(t *testing.T) {
	repo := &mockRepository{}
	sched := &mockScheduler{}
	svc := NewService(repo, sched, nil)

	faculty := &authz.Actor{
		ID: 7, Role: authz.RoleFaculty, Department: "CSE",
		AssignedSections: []authz.SectionAssignment{{Branch: "CSE", Semester: "3", Section: "A"}},
	}
	written, err := svc.MarkSheet(context.Background(), faculty, sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, []string{"CSE"}, sched.enqueued)
}

func TestMarkSheet_FacultyWrongSectionDenied(t *testing.T) {
	repo := &mockRepository{}
	sched := &mockScheduler{}
	svc := NewService(repo, sched, nil)

	faculty := &authz.Actor{
		ID: 7, Role: authz.RoleFaculty, Department: "CSE",
		AssignedSections: []authz.SectionAssignment{{Branch: "CSE", Semester: "3", Section: "B"}},
	}
	_, err := svc.MarkSheet(context.Background(), faculty, sampleSheet())
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.Empty(t, repo.sheets)
	assert.Empty(t, sched.enqueued)
}

func TestMarkSheet_StudentDenied(t *testing.T) {
	svc := NewService(&mockRepository{}, nil, nil)
	student := &authz.Actor{ID: 100, Role: authz.RoleStudent}
	_, err := svc.MarkSheet(context.Background(), student, sampleSheet())
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestListRecords_StudentSeesOwnOnly(t *testing.T) {
	repo := &mockRepository{records: []Record{
		{ID: 1, StudentID: 100, Branch: "CSE"},
		{ID: 2, StudentID: 101, Branch: "CSE"},
	}}
	svc := NewService(repo, nil, nil)

	student := &authz.Actor{ID: 100, Role: authz.RoleStudent}
	records, err := svc.ListRecords(context.Background(), student, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(100), records[0].StudentID)
}

func TestListRecords_HODScopedToBranch(t *testing.T) {
	repo := &mockRepository{records: []Record{
		{ID: 1, StudentID: 100, Branch: "CSE"},
		{ID: 2, StudentID: 200, Branch: "ECE"},
	}}
	svc := NewService(repo, nil, nil)

	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	records, err := svc.ListRecords(context.Background(), hod, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CSE", records[0].Branch)
}

func TestBranchDigest_Scope(t *testing.T) {
	svc := NewService(&mockRepository{}, nil, nil)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	rows, err := svc.BranchDigest(context.Background(), hod, "CSE", day)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	_, err = svc.BranchDigest(context.Background(), hod, "ECE", day)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	student := &authz.Actor{ID: 100, Role: authz.RoleStudent}
	_, err = svc.BranchDigest(context.Background(), student, "CSE", day)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}
