package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/program-catalog/backend/internal/models"
)

// RoleStore persists role membership.
type RoleStore interface {
	// Grant adds the role to the user; adding an already-held role is a no-op.
	Grant(ctx context.Context, userID uuid.UUID, role models.Role) error
	// Revoke removes the role from the user; removing a role the user does
	// not hold is a no-op.
	Revoke(ctx context.Context, userID uuid.UUID, role models.Role) error
}

// PipelineResult is the output of a role-sync step. The external auth
// pipeline consumes exactly this shape: {"user": <user>} when a user was
// processed, {} when none was supplied.
type PipelineResult struct {
	User *models.User `json:"user,omitempty"`
}

// Synchronizer reconciles a user's admins role membership with the
// "administrator" claim on every authentication event.
type Synchronizer struct {
	roles RoleStore
}

// NewSynchronizer creates a role synchronizer backed by an explicit role
// store.
func NewSynchronizer(roles RoleStore) *Synchronizer {
	return &Synchronizer{roles: roles}
}

// SyncRoles grants the admins role when the administrator claim is true and
// revokes it otherwise. A nil user (authentication did not complete) yields
// an empty result without touching the store.
func (s *Synchronizer) SyncRoles(ctx context.Context, claims *Claims, user *models.User) (PipelineResult, error) {
	if user == nil {
		return PipelineResult{}, nil
	}
	if claims != nil && claims.Administrator {
		if err := s.roles.Grant(ctx, user.ID, models.RoleAdmins); err != nil {
			return PipelineResult{}, err
		}
		if !user.HasRole(models.RoleAdmins) {
			user.Roles = append(user.Roles, models.RoleAdmins)
		}
	} else {
		if err := s.roles.Revoke(ctx, user.ID, models.RoleAdmins); err != nil {
			return PipelineResult{}, err
		}
		kept := user.Roles[:0]
		for _, r := range user.Roles {
			if r != models.RoleAdmins {
				kept = append(kept, r)
			}
		}
		user.Roles = kept
	}
	return PipelineResult{User: user}, nil
}
