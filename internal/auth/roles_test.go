package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/program-catalog/backend/internal/models"
)

// fakeRoleStore is an in-memory RoleStore.
type fakeRoleStore struct {
	grants map[uuid.UUID]map[models.Role]bool
	ops    int
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{grants: make(map[uuid.UUID]map[models.Role]bool)}
}

func (s *fakeRoleStore) Grant(_ context.Context, userID uuid.UUID, role models.Role) error {
	s.ops++
	if s.grants[userID] == nil {
		s.grants[userID] = make(map[models.Role]bool)
	}
	s.grants[userID][role] = true
	return nil
}

func (s *fakeRoleStore) Revoke(_ context.Context, userID uuid.UUID, role models.Role) error {
	s.ops++
	delete(s.grants[userID], role)
	return nil
}

func (s *fakeRoleStore) has(userID uuid.UUID, role models.Role) bool {
	return s.grants[userID][role]
}

func TestSyncRoles_AdminGranted(t *testing.T) {
	store := newFakeRoleStore()
	sync := NewSynchronizer(store)
	user := &models.User{ID: uuid.New(), Username: "test-username"}

	result, err := sync.SyncRoles(context.Background(), &Claims{Administrator: true}, user)
	require.NoError(t, err)
	assert.Equal(t, PipelineResult{User: user}, result)
	assert.True(t, store.has(user.ID, models.RoleAdmins))
	assert.True(t, user.IsAdmin())
}

func TestSyncRoles_AdminRevoked(t *testing.T) {
	store := newFakeRoleStore()
	sync := NewSynchronizer(store)

	for _, claims := range []*Claims{{Administrator: false}, {}, nil} {
		user := &models.User{ID: uuid.New(), Username: "test-username", Roles: []models.Role{models.RoleAdmins}}
		require.NoError(t, store.Grant(context.Background(), user.ID, models.RoleAdmins))

		result, err := sync.SyncRoles(context.Background(), claims, user)
		require.NoError(t, err)
		assert.Equal(t, PipelineResult{User: user}, result)
		assert.False(t, store.has(user.ID, models.RoleAdmins))
		assert.False(t, user.IsAdmin())
	}
}

func TestSyncRoles_GrantIsIdempotent(t *testing.T) {
	store := newFakeRoleStore()
	sync := NewSynchronizer(store)
	user := &models.User{ID: uuid.New(), Username: "test-username"}

	for i := 0; i < 3; i++ {
		_, err := sync.SyncRoles(context.Background(), &Claims{Administrator: true}, user)
		require.NoError(t, err)
	}
	assert.True(t, user.IsAdmin())
	assert.Len(t, user.Roles, 1)
}

func TestSyncRoles_NoUser(t *testing.T) {
	store := newFakeRoleStore()
	sync := NewSynchronizer(store)

	result, err := sync.SyncRoles(context.Background(), &Claims{Administrator: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, PipelineResult{}, result)
	assert.Zero(t, store.ops)
}
