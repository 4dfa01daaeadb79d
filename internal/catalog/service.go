// Package catalog implements the program catalog: programs, organizations,
// course codes, and their run modes, with the cross-entity invariants the
// storage engine cannot express enforced on every write path.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/coursekey"
	"github.com/program-catalog/backend/internal/models"
)

// Service is the single write-path orchestrator for the catalog. Every write
// runs its invariant checks synchronously before touching the store, so a
// rejected operation leaves no partial state behind.
type Service struct {
	store  Store
	locks  *programLocks
	cache  *ListingCache
	logger *zap.Logger
}

// NewService creates a catalog service. cache may be nil.
func NewService(store Store, cache *ListingCache, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		locks:  newProgramLocks(),
		cache:  cache,
		logger: logger,
	}
}

// validateProgram holds the program-level invariants shared by create and
// update.
func validateProgram(p *models.Program) error {
	if p.Name == "" {
		return models.NewValidationError("program name is required")
	}
	if !p.Category.Valid() {
		return models.NewValidationError("invalid program category %q", p.Category)
	}
	if p.Status == "" {
		p.Status = models.StatusUnpublished
	}
	if !p.Status.Valid() {
		return models.NewValidationError("invalid program status %q", p.Status)
	}
	if p.Category == models.CategoryXSeries && p.Status == models.StatusActive && p.MarketingSlug == "" {
		return models.NewValidationError("active XSeries programs must have a marketing slug")
	}
	return nil
}

// CreateProgram validates and persists a new program.
func (s *Service) CreateProgram(ctx context.Context, p *models.Program) error {
	if err := validateProgram(p); err != nil {
		return err
	}
	if err := s.store.CreateProgram(ctx, p); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// UpdateProgram validates and persists changes to an existing program.
func (s *Service) UpdateProgram(ctx context.Context, p *models.Program) error {
	if err := validateProgram(p); err != nil {
		return err
	}
	if err := s.store.UpdateProgram(ctx, p); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// GetProgram returns one program by id.
func (s *Service) GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	return s.store.GetProgram(ctx, id)
}

// ListPrograms returns programs matching the filter, via the listing cache
// when one is configured.
func (s *Service) ListPrograms(ctx context.Context, f ListFilter) ([]models.Program, error) {
	if s.cache != nil {
		if programs, ok := s.cache.Get(ctx, f); ok {
			return programs, nil
		}
	}
	programs, err := s.store.ListPrograms(ctx, f)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, f, programs)
	}
	return programs, nil
}

// CreateOrganization persists a new organization.
func (s *Service) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if o.Key == "" || o.DisplayName == "" {
		return models.NewValidationError("organization key and display name are required")
	}
	return s.store.CreateOrganization(ctx, o)
}

// AssociateOrganization links an organization to a program. A program may be
// associated with at most one organization; the storage engine has no
// constraint for this, so it is enforced here before insert.
func (s *Service) AssociateOrganization(ctx context.Context, programID, organizationID uuid.UUID) (*models.ProgramOrganization, error) {
	if _, err := s.store.GetProgram(ctx, programID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}
	exists, err := s.store.ProgramHasOrganization(ctx, programID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("cannot associate multiple organizations with a program")
	}
	po := &models.ProgramOrganization{ProgramID: programID, OrganizationID: organizationID}
	if err := s.store.CreateProgramOrganization(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// CreateCourseCode persists a new course code under an organization.
func (s *Service) CreateCourseCode(ctx context.Context, cc *models.CourseCode) error {
	if cc.Key == "" {
		return models.NewValidationError("course code key is required")
	}
	if _, err := s.store.GetOrganization(ctx, cc.OrganizationID); err != nil {
		return err
	}
	return s.store.CreateCourseCode(ctx, cc)
}

// AddCourseCode links a course code into a program's curriculum. When
// position is zero it is allocated as max(existing)+1 under the program's
// write lock; an explicit position is used as-is and relies on the engine's
// (program, position) constraint.
func (s *Service) AddCourseCode(ctx context.Context, programID, courseCodeID uuid.UUID, position int) (*models.ProgramCourseCode, error) {
	cc, err := s.store.GetCourseCode(ctx, courseCodeID)
	if err != nil {
		return nil, err
	}

	pcc := &models.ProgramCourseCode{
		ProgramID:    programID,
		CourseCodeID: courseCodeID,
		Position:     position,
	}

	if position == 0 {
		linked, err := s.store.CourseCodeInAnyProgram(ctx, courseCodeID)
		if err != nil {
			return nil, err
		}
		if linked {
			return nil, models.NewValidationError("cannot associate multiple programs with a course code")
		}
		offered, err := s.store.OrganizationOffersProgram(ctx, programID, cc.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !offered {
			return nil, models.NewValidationError("course code must be offered by the same organization offering the program")
		}

		// Hold the program lock across the max read and the insert so two
		// concurrent appends cannot compute the same position. This covers
		// a single process only; multi-process deployments must serialize
		// curriculum writes per program externally.
		unlock := s.locks.lock(programID)
		defer unlock()

		max, err := s.store.MaxPosition(ctx, programID)
		if err != nil {
			return nil, err
		}
		pcc.Position = max + 1
	}

	if err := s.store.CreateProgramCourseCode(ctx, pcc); err != nil {
		return nil, err
	}
	return pcc, nil
}

// ListCurriculum returns the program's course codes in position order.
func (s *Service) ListCurriculum(ctx context.Context, programID uuid.UUID) ([]models.ProgramCourseCode, error) {
	return s.store.ListProgramCourseCodes(ctx, programID)
}

// AddRunMode validates and persists a new run mode under a program course
// code. The duplicate scan treats an empty sku as a concrete value, so only
// one row without sku may exist per (course code link, course key, mode);
// the engine's native tuple constraint admits any number of NULL skus.
func (s *Service) AddRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error {
	if _, err := s.store.GetProgramCourseCode(ctx, rm.ProgramCourseCodeID); err != nil {
		return err
	}
	if err := s.checkRunMode(ctx, rm); err != nil {
		return err
	}
	return s.store.CreateRunMode(ctx, rm)
}

// UpdateRunMode validates and persists changes to a run mode, excluding the
// row itself from the duplicate scan.
func (s *Service) UpdateRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error {
	if err := s.checkRunMode(ctx, rm); err != nil {
		return err
	}
	return s.store.UpdateRunMode(ctx, rm)
}

func (s *Service) checkRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error {
	if rm.ModeSlug == "" {
		return models.NewValidationError("run mode slug is required")
	}
	dup, err := s.store.DuplicateRunModeExists(ctx, rm.ProgramCourseCodeID, rm.CourseKey, rm.ModeSlug, rm.SKU, rm.ID)
	if err != nil {
		return err
	}
	if dup {
		return models.NewValidationError("duplicate course run modes are not allowed for course codes in a program")
	}
	key, err := coursekey.Parse(rm.CourseKey)
	if err != nil {
		return models.NewValidationError("invalid course key: %v", err)
	}
	rm.RunKey = key.Run
	return nil
}

// ListRunModes returns the run modes under a program course code.
func (s *Service) ListRunModes(ctx context.Context, programCourseCodeID uuid.UUID) ([]models.ProgramCourseRunMode, error) {
	return s.store.ListRunModes(ctx, programCourseCodeID)
}

// GetDefault returns the service-wide fallback configuration.
func (s *Service) GetDefault(ctx context.Context) (*models.ProgramDefault, error) {
	return s.store.GetDefault(ctx)
}

// SetDefault replaces the service-wide fallback banner image.
func (s *Service) SetDefault(ctx context.Context, bannerImage string) (*models.ProgramDefault, error) {
	return s.store.SetDefault(ctx, bannerImage)
}

// BannerImage resolves the banner for a program, falling back to the
// configured default when the program has none.
func (s *Service) BannerImage(ctx context.Context, p *models.Program) (string, error) {
	if p.BannerImage != "" {
		return p.BannerImage, nil
	}
	def, err := s.store.GetDefault(ctx)
	if err != nil {
		return "", err
	}
	return def.BannerImage, nil
}

func (s *Service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate program listing cache", zap.Error(err))
	}
}
