package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/program-catalog/backend/internal/models"
)

// ListFilter narrows program listings. Empty fields match everything.
type ListFilter struct {
	Status   models.ProgramStatus
	Category models.ProgramCategory
}

// Store is the persistence boundary for the program catalog. The storage
// engine enforces the native uniqueness constraints (program name,
// organization key and display name, (organization, key) on course codes,
// (program, position), the full run-mode tuple); the service layers the
// checks the engine cannot express on top of these primitives.
type Store interface {
	CreateProgram(ctx context.Context, p *models.Program) error
	UpdateProgram(ctx context.Context, p *models.Program) error
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListPrograms(ctx context.Context, f ListFilter) ([]models.Program, error)

	CreateOrganization(ctx context.Context, o *models.Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	CreateProgramOrganization(ctx context.Context, po *models.ProgramOrganization) error
	// ProgramHasOrganization reports whether any organization is associated
	// with the program.
	ProgramHasOrganization(ctx context.Context, programID uuid.UUID) (bool, error)
	// OrganizationOffersProgram reports whether the given organization is
	// associated with the program.
	OrganizationOffersProgram(ctx context.Context, programID, organizationID uuid.UUID) (bool, error)

	CreateCourseCode(ctx context.Context, cc *models.CourseCode) error
	GetCourseCode(ctx context.Context, id uuid.UUID) (*models.CourseCode, error)

	CreateProgramCourseCode(ctx context.Context, pcc *models.ProgramCourseCode) error
	GetProgramCourseCode(ctx context.Context, id uuid.UUID) (*models.ProgramCourseCode, error)
	ListProgramCourseCodes(ctx context.Context, programID uuid.UUID) ([]models.ProgramCourseCode, error)
	// CourseCodeInAnyProgram reports whether the course code is already
	// linked into some program's curriculum.
	CourseCodeInAnyProgram(ctx context.Context, courseCodeID uuid.UUID) (bool, error)
	// MaxPosition returns the highest position in the program's curriculum,
	// or 0 when the curriculum is empty.
	MaxPosition(ctx context.Context, programID uuid.UUID) (int, error)

	CreateRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error
	UpdateRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error
	ListRunModes(ctx context.Context, programCourseCodeID uuid.UUID) ([]models.ProgramCourseRunMode, error)
	// DuplicateRunModeExists reports whether a row other than excludeID
	// matches the tuple. The sku argument uses "" for NULL, so all
	// missing-sku rows fall into one equivalence class.
	DuplicateRunModeExists(ctx context.Context, programCourseCodeID uuid.UUID, courseKey, modeSlug, sku string, excludeID uuid.UUID) (bool, error)

	// GetDefault returns the singleton fallback configuration record.
	GetDefault(ctx context.Context) (*models.ProgramDefault, error)
	SetDefault(ctx context.Context, bannerImage string) (*models.ProgramDefault, error)
}
