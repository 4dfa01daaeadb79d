package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/models"
)

// fakeUserStore is an in-memory UserStore that can inject creation
// conflicts, mimicking concurrent inserts of the same username.
type fakeUserStore struct {
	users     map[string]*models.User
	conflicts int // Create calls to fail with ErrConflict before succeeding
	creates   int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, username string) (*models.User, error) {
	s.creates++
	if s.conflicts > 0 {
		s.conflicts--
		return nil, fmt.Errorf("%w: username %q", models.ErrConflict, username)
	}
	u := &models.User{ID: uuid.New(), Username: username}
	s.users[username] = u
	return u, nil
}

func TestResolve_MissingPreferredUsername(t *testing.T) {
	r := NewResolver(newFakeUserStore(), zap.NewNop())

	_, err := r.Resolve(context.Background(), &Claims{})
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	_, err = r.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestResolve_CreatesUserOnFirstLogin(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(store, zap.NewNop())

	user, err := r.Resolve(context.Background(), &Claims{PreferredUsername: "test-username"})
	require.NoError(t, err)
	assert.Equal(t, "test-username", user.Username)
	assert.Equal(t, 1, store.creates)

	// re-authentication is idempotent
	again, err := r.Resolve(context.Background(), &Claims{PreferredUsername: "test-username"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, 1, store.creates)
}

func TestResolve_RetriesOnConflict(t *testing.T) {
	for retries := 0; retries <= MaxRetries; retries++ {
		t.Run(fmt.Sprintf("%d conflicts", retries), func(t *testing.T) {
			store := newFakeUserStore()
			store.conflicts = retries
			r := NewResolver(store, zap.NewNop())

			user, err := r.Resolve(context.Background(), &Claims{PreferredUsername: "test-username"})
			require.NoError(t, err)
			assert.Equal(t, "test-username", user.Username)
		})
	}
}

func TestResolve_ConflictBeyondRetryLimit(t *testing.T) {
	store := newFakeUserStore()
	store.conflicts = MaxRetries + 1
	r := NewResolver(store, zap.NewNop())

	_, err := r.Resolve(context.Background(), &Claims{PreferredUsername: "test-username"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, MaxRetries+1, store.creates)
}

func TestResolve_PropagatesStoreErrors(t *testing.T) {
	r := NewResolver(&erroringUserStore{}, zap.NewNop())

	_, err := r.Resolve(context.Background(), &Claims{PreferredUsername: "test-username"})
	assert.EqualError(t, err, "connection refused")
}

type erroringUserStore struct{}

func (s *erroringUserStore) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, fmt.Errorf("connection refused")
}

func (s *erroringUserStore) Create(context.Context, string) (*models.User, error) {
	return nil, fmt.Errorf("connection refused")
}
