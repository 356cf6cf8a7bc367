package courses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

type mockRepository struct {
	items  map[int64]*Course
	nextID int64
}

func newMockRepository(seed ...Course) *mockRepository {
	m := &mockRepository{items: make(map[int64]*Course), nextID: 1}
	for _, c := range seed {
		copied := c
		m.items[c.ID] = &copied
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *mockRepository) ListCourses(ctx context.Context) ([]Course, error) {
	var out []Course
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.items[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepository) GetCourse(ctx context.Context, id int64) (*Course, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) CreateCourse(ctx context.Context, c Course) (*Course, error) {
	c.ID = m.nextID
	m.nextID++
	copied := c
	m.items[c.ID] = &copied
	return &c, nil
}

func (m *mockRepository) UpdateCourse(ctx context.Context, c Course) (*Course, error) {
	if _, ok := m.items[c.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	copied := c
	m.items[c.ID] = &copied
	return &c, nil
}

func (m *mockRepository) DeleteCourse(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func sampleCourse() Course {
	return Course{ID: 1, Code: "CS301", Title: "Algorithms", Branch: "CSE", Semester: "3", Credits: 4}
}

func TestListCourses_OpenToAllRoles(t *testing.T) {
	svc := NewService(newMockRepository(sampleCourse()), nil)

	for _, role := range []authz.Role{authz.RoleAdmin, authz.RolePrincipal, authz.RoleHOD, authz.RoleFaculty, authz.RoleStudent} {
		actor := &authz.Actor{ID: 1, Role: role, Department: "ECE"}
		list, err := svc.ListCourses(context.Background(), actor)
		require.NoError(t, err, "role %s", role)
		assert.Len(t, list, 1, "role %s", role)
	}

	_, err := svc.ListCourses(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreateCourse_HODBranchScope(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}

	created, err := svc.CreateCourse(context.Background(), hod, sampleCourse())
	require.NoError(t, err)
	assert.Equal(t, "CS301", created.Code)

	foreign := sampleCourse()
	foreign.Branch = "ECE"
	_, err = svc.CreateCourse(context.Background(), hod, foreign)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateCourse_CannotMoveAcrossBranch(t *testing.T) {
	svc := NewService(newMockRepository(sampleCourse()), nil)
	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}

	moved := sampleCourse()
	moved.Branch = "ECE"
	_, err := svc.UpdateCourse(context.Background(), hod, moved)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	admin := &authz.Actor{ID: 1, Role: authz.RoleAdmin}
	updated, err := svc.UpdateCourse(context.Background(), admin, moved)
	require.NoError(t, err)
	assert.Equal(t, "ECE", updated.Branch)
}

func TestDeleteCourse_FacultyDenied(t *testing.T) {
	svc := NewService(newMockRepository(sampleCourse()), nil)
	faculty := &authz.Actor{ID: 7, Role: authz.RoleFaculty, Department: "CSE"}
	err := svc.DeleteCourse(context.Background(), faculty, 1)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}
