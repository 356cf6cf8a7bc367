package timetable

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

type mockRepository struct {
	entries map[int64]*Entry
	nextID  int64
}

func newMockRepository(seed ...Entry) *mockRepository {
	m := &mockRepository{entries: make(map[int64]*Entry), nextID: 1}
	for _, e := range seed {
		copied := e
		m.entries[e.ID] = &copied
		if e.ID >= m.nextID {
			m.nextID = e.ID + 1
		}
	}
	return m
}

func (m *mockRepository) ListEntries(ctx context.Context, branch string) ([]Entry, error) {
	var out []Entry
	for id := int64(1); id < m.nextID; id++ {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		if branch != "" && e.Branch != branch {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockRepository) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockRepository) CreateEntry(ctx context.Context, e Entry) (*Entry, error) {
	e.ID = m.nextID
	m.nextID++
	copied := e
	m.entries[e.ID] = &copied
	return &e, nil
}

func (m *mockRepository) UpdateEntry(ctx context.Context, e Entry) (*Entry, error) {
	if _, ok := m.entries[e.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	copied := e
	m.entries[e.ID] = &copied
	return &e, nil
}

func (m *mockRepository) DeleteEntry(ctx context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func facultyWithAssignments(raw string) *authz.Actor {
	var assignment authz.SectionAssignment
	if err := json.Unmarshal([]byte(raw), &assignment); err != nil {
		panic(err)
	}
	return &authz.Actor{
		ID:               7,
		Role:             authz.RoleFaculty,
		Department:       "CSE",
		AssignedSections: []authz.SectionAssignment{assignment},
	}
}

func seedEntry() Entry {
	return Entry{
		ID: 1, Branch: "CSE", Semester: "3", Section: "A",
		DayOfWeek: 1, Period: 2, CourseID: 10, FacultyID: 7,
	}
}

func TestCreateEntry_FacultyAssignedSection(t *testing.T) {
	// The assignment carries a numeric semester while the entry carries a
	// string; the two must still line up.
	faculty := facultyWithAssignments(`{"branch":"CSE","semester":3,"section":"A"}`)
	svc := NewService(newMockRepository(), nil, nil)

	created, err := svc.CreateEntry(context.Background(), faculty, seedEntry())
	require.NoError(t, err)
	assert.Equal(t, "CSE", created.Branch)
}

func TestCreateEntry_FacultyWrongSection(t *testing.T) {
	faculty := facultyWithAssignments(`{"branch":"CSE","semester":3,"section":"B"}`)
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.CreateEntry(context.Background(), faculty, seedEntry())
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreateEntry_FacultyLegacyAssignmentString(t *testing.T) {
	faculty := facultyWithAssignments(`"CSE-3-A"`)
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.CreateEntry(context.Background(), faculty, seedEntry())
	require.NoError(t, err)
}

func TestCreateEntry_FacultyNoAssignments(t *testing.T) {
	// Department match alone never grants faculty write access.
	faculty := &authz.Actor{ID: 7, Role: authz.RoleFaculty, Department: "CSE"}
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.CreateEntry(context.Background(), faculty, seedEntry())
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreateEntry_HODDepartmentScope(t *testing.T) {
	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.CreateEntry(context.Background(), hod, seedEntry())
	require.NoError(t, err)

	other := seedEntry()
	other.Branch = "ECE"
	_, err = svc.CreateEntry(context.Background(), hod, other)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateEntry_ChecksBothSections(t *testing.T) {
	// Moving an entry out of the actor's section is denied even though the
	// current section is theirs.
	faculty := facultyWithAssignments(`{"branch":"CSE","semester":"3","section":"A"}`)
	svc := NewService(newMockRepository(seedEntry()), nil, nil)

	moved := seedEntry()
	moved.Section = "B"
	_, err := svc.UpdateEntry(context.Background(), faculty, moved)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	same := seedEntry()
	same.Room = "LH-2"
	updated, err := svc.UpdateEntry(context.Background(), faculty, same)
	require.NoError(t, err)
	assert.Equal(t, "LH-2", updated.Room)
}

func TestDeleteEntry_AuditsMutation(t *testing.T) {
	audit := &mockAuditor{}
	admin := &authz.Actor{ID: 1, Role: authz.RoleAdmin}
	svc := NewService(newMockRepository(seedEntry()), audit, nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), admin, 1))
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "timetable.delete", audit.logs[0].Action)
}

func TestListEntries_StudentCanRead(t *testing.T) {
	student := &authz.Actor{ID: 9, Role: authz.RoleStudent}
	svc := NewService(newMockRepository(seedEntry()), nil, nil)

	entries, err := svc.ListEntries(context.Background(), student, "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type mockAuditor struct {
	logs []shared.AuditLog
}

func (m *mockAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}
