package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names a permission group a user can belong to.
type Role string

const (
	// RoleAdmins is the administrative role synced from the identity provider's
	// "administrator" claim.
	RoleAdmins Role = "admins"
	// RoleLearners is the default role for users without elevated access.
	RoleLearners Role = "learners"
)

// User represents a service user provisioned lazily on first authentication.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the admins role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmins)
}
