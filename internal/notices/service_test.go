package notices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

type mockRepository struct {
	items  map[int64]*Notice
	nextID int64
}

func newMockRepository(seed ...Notice) *mockRepository {
	m := &mockRepository{items: make(map[int64]*Notice), nextID: 1}
	for _, n := range seed {
		copied := n
		m.items[n.ID] = &copied
		if n.ID >= m.nextID {
			m.nextID = n.ID + 1
		}
	}
	return m
}

func (m *mockRepository) ListNotices(ctx context.Context) ([]Notice, error) {
	var out []Notice
	for id := int64(1); id < m.nextID; id++ {
		if n, ok := m.items[id]; ok {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockRepository) GetNotice(ctx context.Context, id int64) (*Notice, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *mockRepository) CreateNotice(ctx context.Context, n Notice) (*Notice, error) {
	n.ID = m.nextID
	m.nextID++
	copied := n
	m.items[n.ID] = &copied
	return &n, nil
}

func (m *mockRepository) UpdateNotice(ctx context.Context, n Notice) (*Notice, error) {
	if _, ok := m.items[n.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	copied := n
	m.items[n.ID] = &copied
	return &n, nil
}

func (m *mockRepository) DeleteNotice(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockFanout struct {
	enqueued []int64
}

func (m *mockFanout) EnqueueNoticeFanout(ctx context.Context, noticeID int64) error {
	m.enqueued = append(m.enqueued, noticeID)
	return nil
}

func TestPublishNotice_PrincipalReachesEveryone(t *testing.T) {
	fanout := &mockFanout{}
	svc := NewService(newMockRepository(), fanout, nil)

	principal := &authz.Actor{ID: 2, Role: authz.RolePrincipal}
	created, err := svc.PublishNotice(context.Background(), principal, Notice{
		Title: "Holiday", Body: "Campus closed Friday.", Audience: AudienceAll,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.PostedBy)
	assert.Equal(t, []int64{created.ID}, fanout.enqueued)
}

func TestPublishNotice_HODOwnBranchOnly(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	hod := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}

	_, err := svc.PublishNotice(context.Background(), hod, Notice{
		Title: "Lab closed", Body: "Lab 2 closed for maintenance.", Audience: AudienceBranch, Branch: "CSE",
	})
	require.NoError(t, err)

	_, err = svc.PublishNotice(context.Background(), hod, Notice{
		Title: "Campus wide", Body: "Nope.", Audience: AudienceAll,
	})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = svc.PublishNotice(context.Background(), hod, Notice{
		Title: "Other branch", Body: "Nope.", Audience: AudienceBranch, Branch: "ECE",
	})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestPublishNotice_StudentDenied(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	student := &authz.Actor{ID: 100, Role: authz.RoleStudent, Department: "CSE"}
	_, err := svc.PublishNotice(context.Background(), student, Notice{
		Title: "Party", Body: "My place.", Audience: AudienceBranch, Branch: "CSE",
	})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestListNotices_BranchTargetingFiltered(t *testing.T) {
	repo := newMockRepository(
		Notice{ID: 1, Title: "General", Audience: AudienceAll},
		Notice{ID: 2, Title: "CSE only", Audience: AudienceBranch, Branch: "CSE"},
		Notice{ID: 3, Title: "ECE only", Audience: AudienceBranch, Branch: "ECE"},
		Notice{ID: 4, Title: "Staff", Audience: AudienceFaculty},
	)
	svc := NewService(repo, nil, nil)

	student := &authz.Actor{ID: 100, Role: authz.RoleStudent, Department: "CSE"}
	visible, err := svc.ListNotices(context.Background(), student)
	require.NoError(t, err)
	titles := make([]string, 0, len(visible))
	for _, n := range visible {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"General", "CSE only"}, titles)

	admin := &authz.Actor{ID: 1, Role: authz.RoleAdmin}
	all, err := svc.ListNotices(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUpdateNotice_PosterEditsContentOnly(t *testing.T) {
	repo := newMockRepository(Notice{ID: 1, Title: "Lab closed", Body: "Lab 2.", Audience: AudienceBranch, Branch: "CSE", PostedBy: 3})
	svc := NewService(repo, nil, nil)

	other := &authz.Actor{ID: 4, Role: authz.RoleFaculty, Department: "CSE"}
	_, err := svc.UpdateNotice(context.Background(), other, Notice{ID: 1, Title: "Hijacked", Body: "x"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	poster := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	updated, err := svc.UpdateNotice(context.Background(), poster, Notice{ID: 1, Title: "Lab reopened", Body: "Back in service."})
	require.NoError(t, err)
	assert.Equal(t, "Lab reopened", updated.Title)
	assert.Equal(t, AudienceBranch, updated.Audience)
	assert.Equal(t, "CSE", updated.Branch)
	assert.Equal(t, int64(3), updated.PostedBy)

	principal := &authz.Actor{ID: 2, Role: authz.RolePrincipal}
	_, err = svc.UpdateNotice(context.Background(), principal, Notice{ID: 1, Title: "Final wording", Body: "Done."})
	require.NoError(t, err)
}

func TestDeleteNotice_PosterOrCampusRole(t *testing.T) {
	repo := newMockRepository(Notice{ID: 1, Title: "Lab closed", Audience: AudienceBranch, Branch: "CSE", PostedBy: 3})
	svc := NewService(repo, nil, nil)

	other := &authz.Actor{ID: 4, Role: authz.RoleHOD, Department: "CSE"}
	err := svc.DeleteNotice(context.Background(), other, 1)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	poster := &authz.Actor{ID: 3, Role: authz.RoleHOD, Department: "CSE"}
	require.NoError(t, svc.DeleteNotice(context.Background(), poster, 1))
}
