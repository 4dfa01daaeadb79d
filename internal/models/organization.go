package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents the organization offering one or more courses
// and/or programs. The upstream LMS is the source of truth for this data;
// a minimal subset is replicated here to enforce referential integrity.
type Organization struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
