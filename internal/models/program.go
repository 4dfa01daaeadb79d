package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgramCategory is the category / type of a Program.
type ProgramCategory string

const (
	CategoryXSeries      ProgramCategory = "XSeries"
	CategoryMicroMasters ProgramCategory = "MicroMasters"
)

// Valid reports whether the category is one of the allowed values.
func (c ProgramCategory) Valid() bool {
	return c == CategoryXSeries || c == CategoryMicroMasters
}

// ProgramStatus is the lifecycle status of a Program.
type ProgramStatus string

const (
	StatusUnpublished ProgramStatus = "unpublished"
	StatusActive      ProgramStatus = "active"
	StatusRetired     ProgramStatus = "retired"
	StatusDeleted     ProgramStatus = "deleted"
)

// Valid reports whether the status is one of the allowed values.
func (s ProgramStatus) Valid() bool {
	switch s {
	case StatusUnpublished, StatusActive, StatusRetired, StatusDeleted:
		return true
	}
	return false
}

// Program is a curated, ordered grouping of course codes offered by one
// organization, with a publication lifecycle.
type Program struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Subtitle      string          `json:"subtitle,omitempty"`
	Category      ProgramCategory `json:"category"`
	Status        ProgramStatus   `json:"status"`
	MarketingSlug string          `json:"marketing_slug,omitempty"`
	BannerImage   string          `json:"banner_image,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProgramOrganization links a Program to the Organization offering it.
// At most one organization may be associated with a program.
type ProgramOrganization struct {
	ID             uuid.UUID `json:"id"`
	ProgramID      uuid.UUID `json:"program_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProgramDefault holds service-wide fallback values applied when a Program
// lacks its own, currently just the banner image.
type ProgramDefault struct {
	BannerImage string    `json:"banner_image"`
	UpdatedAt   time.Time `json:"updated_at"`
}
