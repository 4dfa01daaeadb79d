package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/models"
)

// MaxRetries bounds how many times user creation is re-attempted after a
// uniqueness conflict. Concurrent first-time logins for the same username
// race on insert; a retry re-runs the lookup and finds the winner's row.
const MaxRetries = 3

// UserStore persists users.
type UserStore interface {
	// GetByUsername returns the user or models.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Create inserts a new user, returning models.ErrConflict if the
	// username was inserted concurrently.
	Create(ctx context.Context, username string) (*models.User, error)
}

// Resolver turns a verified token payload into a persisted user record.
type Resolver struct {
	users  UserStore
	logger *zap.Logger
}

// NewResolver creates an identity resolver.
func NewResolver(users UserStore, logger *zap.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Resolve returns the user identified by the payload's preferred_username
// claim, creating the record on first authentication. Conflicts during
// creation are retried up to MaxRetries; exhausting the bound propagates the
// conflict, since at that point it signals a bug rather than a race.
func (r *Resolver) Resolve(ctx context.Context, claims *Claims) (*models.User, error) {
	if claims == nil || claims.PreferredUsername == "" {
		r.logger.Warn("invalid token payload: preferred_username not present")
		return nil, fmt.Errorf("%w: preferred_username not present", models.ErrAuthenticationFailed)
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		user, err := r.getOrCreate(ctx, claims.PreferredUsername)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		lastErr = err
		r.logger.Warn("conflict creating user, retrying",
			zap.String("username", claims.PreferredUsername),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, lastErr
}

func (r *Resolver) getOrCreate(ctx context.Context, username string) (*models.User, error) {
	user, err := r.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return r.users.Create(ctx, username)
}
