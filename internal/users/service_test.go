package users

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

type mockRepository struct {
	byID map[int64]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: map[int64]*User{}}
}

func (m *mockRepository) seed(u User) *User {
	stored := u
	m.byID[stored.ID] = &stored
	return &stored
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	var out []User
	for _, u := range m.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	copied.Bookmarks = slices.Clone(u.Bookmarks)
	return &copied, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status auth.Status) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Status = status
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, in User) (*User, error) {
	if _, ok := m.byID[in.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	stored := in
	m.byID[in.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepository) SetBookmarks(ctx context.Context, id int64, bookmarks []int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Bookmarks = slices.Clone(bookmarks)
	copied := *u
	copied.Bookmarks = slices.Clone(u.Bookmarks)
	return &copied, nil
}

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, nil, logger), repo
}

func TestApprovePendingAccount(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Name: "Dana", Email: "dana@example.com", Role: auth.RoleAuthor, Status: auth.StatusPending})

	user, err := svc.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusApproved, user.Status)
}

func TestApproveAlreadyApproved(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Status: auth.StatusApproved, Role: auth.RoleAuthor})

	_, err := svc.Approve(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrInvalidOperation)
}

func TestRejectPendingAccount(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Status: auth.StatusPending, Role: auth.RoleAuthor})

	user, err := svc.Reject(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusRejected, user.Status)
}

func TestDecisionOnRejectedAccount(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Status: auth.StatusRejected, Role: auth.RoleAuthor})

	// Rejected is terminal; there is no path back through the decision
	// endpoints.
	_, err := svc.Approve(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrInvalidOperation)
}

func TestDecisionOnMissingAccount(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Approve(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePartialEdit(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Name: "Dana", Role: auth.RoleViewer, Status: auth.StatusApproved, Bio: "old"})

	user, err := svc.Update(context.Background(), 1, UpdateInput{
		Role: ptr("author"),
		Bio:  ptr("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAuthor, user.Role)
	assert.Equal(t, "new", user.Bio)
	assert.Equal(t, "Dana", user.Name)
}

func TestUpdateRejectsUnknownRole(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Role: auth.RoleViewer, Status: auth.StatusApproved})

	_, err := svc.Update(context.Background(), 1, UpdateInput{Role: ptr("superuser")})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteBlocksSelf(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 7, Role: auth.RoleAdmin, Status: auth.StatusApproved})

	err := svc.Delete(context.Background(), 7, 7)
	assert.ErrorIs(t, err, shared.ErrInvalidOperation)

	_, findErr := repo.FindByID(context.Background(), 7)
	assert.NoError(t, findErr)
}

func TestDeleteOtherAccount(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 2, Role: auth.RoleViewer, Status: auth.StatusApproved})

	require.NoError(t, svc.Delete(context.Background(), 7, 2))
	_, err := repo.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestToggleBookmark(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Role: auth.RoleViewer, Status: auth.StatusApproved})

	user, added, err := svc.ToggleBookmark(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []int64{42}, user.Bookmarks)

	user, added, err = svc.ToggleBookmark(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, user.Bookmarks)
}

func TestListPendingFiltersByStatus(t *testing.T) {
	svc, repo := newTestService(t)
	repo.seed(User{ID: 1, Status: auth.StatusApproved, Role: auth.RoleViewer})
	repo.seed(User{ID: 2, Status: auth.StatusPending, Role: auth.RoleAuthor})

	items, page, err := svc.ListPending(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, 1, page.Total)
}
