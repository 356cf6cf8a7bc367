package assignments

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
	items  map[int64]*Assignment
	nextID int64
}

func newMockRepository(seed ...Assignment) *mockRepository {
	m := &mockRepository{items: make(map[int64]*Assignment), nextID: 1}
	for _, a := range seed {
		copied := a
		m.items[a.ID] = &copied
		if a.ID >= m.nextID {
			m.nextID = a.ID + 1
		}
	}
	return m
}

func (m *mockRepository) ListAssignments(ctx context.Context) ([]Assignment, error) {
	var out []Assignment
	for id := int64(1); id < m.nextID; id++ {
		if a, ok := m.items[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepository) CreateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	a.ID = m.nextID
	m.nextID++
	copied := a
	m.items[a.ID] = &copied
	return &a, nil
}

func (m *mockRepository) UpdateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	current, ok := m.items[a.ID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	current.Title = a.Title
	current.Description = a.Description
	current.DueAt = a.DueAt
	copied := *current
	return &copied, nil
}

func (m *mockRepository) DeleteAssignment(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func assignedFaculty(id int64) *authz.Actor {
	return &authz.Actor{
		ID: id, Role: authz.RoleFaculty, Department: "CSE",
		AssignedSections: []authz.SectionAssignment{{Branch: "CSE", Semester: "3", Section: "A"}},
	}
}

func seedAssignment(createdBy int64) Assignment {
	return Assignment{
		ID: 1, Title: "Graph Traversals", Branch: "CSE", Semester: "3", Section: "A",
		CourseID: 10, DueAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), CreatedBy: createdBy,
	}
}

func TestCreateAssignment_StampsAuthor(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	faculty := assignedFaculty(7)

	payload := seedAssignment(0)
	payload.ID = 0
	payload.CreatedBy = 999 // client supplied authorship is ignored

	created, err := svc.CreateAssignment(context.Background(), faculty, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.CreatedBy)
}

func TestCreateAssignment_FacultyNeedsSection(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	faculty := &authz.Actor{ID: 7, Role: authz.RoleFaculty, Department: "CSE"}

	payload := seedAssignment(0)
	payload.ID = 0
	_, err := svc.CreateAssignment(context.Background(), faculty, payload)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateAssignment_OwnershipRule(t *testing.T) {
	repo := newMockRepository(seedAssignment(7))
	svc := NewService(repo, nil)

	owner := assignedFaculty(7)
	edit := seedAssignment(7)
	edit.Title = "Graph Traversals v2"
	updated, err := svc.UpdateAssignment(context.Background(), owner, edit)
	require.NoError(t, err)
	assert.Equal(t, "Graph Traversals v2", updated.Title)

	other := assignedFaculty(8)
	_, err = svc.UpdateAssignment(context.Background(), other, edit)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateAssignment_HODOverridesWithinBranch(t *testing.T) {
	repo := newMockRepository(seedAssignment(7))
	svc := NewService(repo, nil)

	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	edit := seedAssignment(7)
	edit.Title = "Revised"
	_, err := svc.UpdateAssignment(context.Background(), hod, edit)
	require.NoError(t, err)

	otherHOD := &authz.Actor{ID: 4, Role: authz.RoleHOD, Department: "ECE"}
	_, err = svc.UpdateAssignment(context.Background(), otherHOD, edit)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestDeleteAssignment_UnknownAuthorBlocksFaculty(t *testing.T) {
	// A legacy row without authorship cannot be claimed by any faculty
	// member; only department or campus level roles may remove it.
	repo := newMockRepository(seedAssignment(0))
	svc := NewService(repo, nil)

	err := svc.DeleteAssignment(context.Background(), assignedFaculty(7), 1)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	admin := &authz.Actor{ID: 1, Role: authz.RoleAdmin}
	require.NoError(t, svc.DeleteAssignment(context.Background(), admin, 1))
}

func TestListAssignments_ScopedByBranch(t *testing.T) {
	other := seedAssignment(7)
	other.ID = 2
	other.Branch = "ECE"
	repo := newMockRepository(seedAssignment(7), other)
	svc := NewService(repo, nil)

	student := &authz.Actor{ID: 100, Role: authz.RoleStudent, Department: "CSE"}
	visible, err := svc.ListAssignments(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "CSE", visible[0].Branch)

	admin := &authz.Actor{ID: 1, Role: authz.RoleAdmin}
	all, err := svc.ListAssignments(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
