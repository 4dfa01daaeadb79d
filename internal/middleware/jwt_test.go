package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/auth"
	"github.com/program-catalog/backend/internal/models"
)

const testSecret = "test-secret"

type memAuthStore struct {
	users map[string]*models.User
	roles map[uuid.UUID]map[models.Role]bool
}

func newMemAuthStore() *memAuthStore {
	return &memAuthStore{
		users: make(map[string]*models.User),
		roles: make(map[uuid.UUID]map[models.Role]bool),
	}
}

func (s *memAuthStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	var roles []models.Role
	for r := range s.roles[u.ID] {
		roles = append(roles, r)
	}
	cp := *u
	cp.Roles = roles
	return &cp, nil
}

func (s *memAuthStore) Create(_ context.Context, username string) (*models.User, error) {
	u := &models.User{ID: uuid.New(), Username: username}
	s.users[username] = u
	return u, nil
}

func (s *memAuthStore) Grant(_ context.Context, userID uuid.UUID, role models.Role) error {
	if s.roles[userID] == nil {
		s.roles[userID] = make(map[models.Role]bool)
	}
	s.roles[userID][role] = true
	return nil
}

func (s *memAuthStore) Revoke(_ context.Context, userID uuid.UUID, role models.Role) error {
	delete(s.roles[userID], role)
	return nil
}

func newTestRouter(store *memAuthStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := auth.NewValidator(testSecret, "", "", 0)
	resolver := auth.NewResolver(store, zap.NewNop())
	synchronizer := auth.NewSynchronizer(store)

	router := gin.New()
	api := router.Group("")
	api.Use(Authenticate(validator, resolver, synchronizer, zap.NewNop()))
	api.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "admin": user.IsAdmin()})
	})
	api.GET("/admin-only", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func signToken(t *testing.T, username string, admin bool) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"preferred_username": username,
		"administrator":      admin,
		"exp":                now.Add(time.Hour).Unix(),
		"iat":                now.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router := newTestRouter(newMemAuthStore())
	rec := doRequest(router, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	router := newTestRouter(newMemAuthStore())
	rec := doRequest(router, "/whoami", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	router := newTestRouter(newMemAuthStore())
	rec := doRequest(router, "/whoami", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ProvisionsUser(t *testing.T) {
	store := newMemAuthStore()
	router := newTestRouter(store)

	rec := doRequest(router, "/whoami", "Bearer "+signToken(t, "test-username", false))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test-username")
	assert.NotNil(t, store.users["test-username"])
}

func TestAuthenticate_SyncsAdminRole(t *testing.T) {
	store := newMemAuthStore()
	router := newTestRouter(store)

	// admin claim grants access
	rec := doRequest(router, "/admin-only", "Bearer "+signToken(t, "test-username", true))
	assert.Equal(t, http.StatusOK, rec.Code)

	// a later token without the claim revokes it
	rec = doRequest(router, "/admin-only", "Bearer "+signToken(t, "test-username", false))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	user := store.users["test-username"]
	assert.False(t, store.roles[user.ID][models.RoleAdmins])
}

func TestAuthenticate_TokenWithoutUsername(t *testing.T) {
	router := newTestRouter(newMemAuthStore())
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doRequest(router, "/whoami", fmt.Sprintf("Bearer %s", signed))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
