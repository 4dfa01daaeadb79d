package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/program-catalog/backend/internal/models"
)

const uniqueViolation = "23505"

// Repository is the pgx implementation of Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateProgram inserts a program.
func (r *Repository) CreateProgram(ctx context.Context, p *models.Program) error {
	const q = `INSERT INTO programs (id, name, subtitle, category, status, marketing_slug, banner_image)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, $4, NULLIF($5,''), NULLIF($6,''))
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q,
		p.Name, p.Subtitle, string(p.Category), string(p.Status), p.MarketingSlug, p.BannerImage).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapWriteErr(err, "program name %q", p.Name)
}

// UpdateProgram updates a program's mutable fields.
func (r *Repository) UpdateProgram(ctx context.Context, p *models.Program) error {
	const q = `UPDATE programs
		SET name = $2, subtitle = NULLIF($3,''), category = $4, status = $5,
			marketing_slug = NULLIF($6,''), banner_image = NULLIF($7,''), updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, p.ID,
		p.Name, p.Subtitle, string(p.Category), string(p.Status), p.MarketingSlug, p.BannerImage).
		Scan(&p.UpdatedAt)
	return mapWriteErr(err, "program name %q", p.Name)
}

// GetProgram returns a program by id.
func (r *Repository) GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	const q = `SELECT id, name, COALESCE(subtitle,''), category, status,
			COALESCE(marketing_slug,''), COALESCE(banner_image,''), created_at, updated_at
		FROM programs WHERE id = $1`
	var p models.Program
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Subtitle, &p.Category, &p.Status,
		&p.MarketingSlug, &p.BannerImage, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrograms returns programs matching the filter, using the
// (status, category) index.
func (r *Repository) ListPrograms(ctx context.Context, f ListFilter) ([]models.Program, error) {
	const q = `SELECT id, name, COALESCE(subtitle,''), category, status,
			COALESCE(marketing_slug,''), COALESCE(banner_image,''), created_at, updated_at
		FROM programs
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR category = $2)
		ORDER BY name`
	rows, err := r.pool.Query(ctx, q, string(f.Status), string(f.Category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Subtitle, &p.Category, &p.Status,
			&p.MarketingSlug, &p.BannerImage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CreateOrganization inserts an organization.
func (r *Repository) CreateOrganization(ctx context.Context, o *models.Organization) error {
	const q = `INSERT INTO organizations (id, key, display_name)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, o.Key, o.DisplayName).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return mapWriteErr(err, "organization %q", o.Key)
}

// GetOrganization returns an organization by id.
func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, key, display_name, created_at, updated_at FROM organizations WHERE id = $1`
	var o models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Key, &o.DisplayName, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateProgramOrganization inserts a program-organization association.
func (r *Repository) CreateProgramOrganization(ctx context.Context, po *models.ProgramOrganization) error {
	const q = `INSERT INTO program_organizations (id, program_id, organization_id)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, po.ProgramID, po.OrganizationID).Scan(&po.ID, &po.CreatedAt)
	return mapWriteErr(err, "program organization")
}

// ProgramHasOrganization reports whether the program has any association row.
func (r *Repository) ProgramHasOrganization(ctx context.Context, programID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM program_organizations WHERE program_id = $1`, programID)
}

// OrganizationOffersProgram reports whether the organization is associated
// with the program.
func (r *Repository) OrganizationOffersProgram(ctx context.Context, programID, organizationID uuid.UUID) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM program_organizations WHERE program_id = $1 AND organization_id = $2`,
		programID, organizationID)
}

// CreateCourseCode inserts a course code.
func (r *Repository) CreateCourseCode(ctx context.Context, cc *models.CourseCode) error {
	const q = `INSERT INTO course_codes (id, organization_id, key, display_name)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, cc.OrganizationID, cc.Key, cc.DisplayName).
		Scan(&cc.ID, &cc.CreatedAt, &cc.UpdatedAt)
	return mapWriteErr(err, "course code %q", cc.Key)
}

// GetCourseCode returns a course code by id.
func (r *Repository) GetCourseCode(ctx context.Context, id uuid.UUID) (*models.CourseCode, error) {
	const q = `SELECT id, organization_id, key, display_name, created_at, updated_at
		FROM course_codes WHERE id = $1`
	var cc models.CourseCode
	err := r.pool.QueryRow(ctx, q, id).Scan(&cc.ID, &cc.OrganizationID, &cc.Key, &cc.DisplayName,
		&cc.CreatedAt, &cc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// CreateProgramCourseCode inserts a curriculum link.
func (r *Repository) CreateProgramCourseCode(ctx context.Context, pcc *models.ProgramCourseCode) error {
	const q = `INSERT INTO program_course_codes (id, program_id, course_code_id, position)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, pcc.ProgramID, pcc.CourseCodeID, pcc.Position).
		Scan(&pcc.ID, &pcc.CreatedAt)
	return mapWriteErr(err, "position %d in program", pcc.Position)
}

// GetProgramCourseCode returns a curriculum link by id.
func (r *Repository) GetProgramCourseCode(ctx context.Context, id uuid.UUID) (*models.ProgramCourseCode, error) {
	const q = `SELECT id, program_id, course_code_id, position, created_at
		FROM program_course_codes WHERE id = $1`
	var pcc models.ProgramCourseCode
	err := r.pool.QueryRow(ctx, q, id).Scan(&pcc.ID, &pcc.ProgramID, &pcc.CourseCodeID,
		&pcc.Position, &pcc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pcc, nil
}

// ListProgramCourseCodes returns the program's curriculum in position order.
func (r *Repository) ListProgramCourseCodes(ctx context.Context, programID uuid.UUID) ([]models.ProgramCourseCode, error) {
	const q = `SELECT id, program_id, course_code_id, position, created_at
		FROM program_course_codes WHERE program_id = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, q, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ProgramCourseCode
	for rows.Next() {
		var pcc models.ProgramCourseCode
		if err := rows.Scan(&pcc.ID, &pcc.ProgramID, &pcc.CourseCodeID, &pcc.Position, &pcc.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, pcc)
	}
	return list, rows.Err()
}

// CourseCodeInAnyProgram reports whether the course code is linked into any
// program's curriculum.
func (r *Repository) CourseCodeInAnyProgram(ctx context.Context, courseCodeID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM program_course_codes WHERE course_code_id = $1`, courseCodeID)
}

// MaxPosition returns the highest curriculum position in the program, or 0.
func (r *Repository) MaxPosition(ctx context.Context, programID uuid.UUID) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM program_course_codes WHERE program_id = $1`,
		programID).Scan(&max)
	return max, err
}

// CreateRunMode inserts a run mode.
func (r *Repository) CreateRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error {
	const q = `INSERT INTO program_course_run_modes
			(id, program_course_code_id, lms_url, course_key, mode_slug, sku, run_key, start_date)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, $4, NULLIF($5,''), $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, rm.ProgramCourseCodeID, rm.LMSURL, rm.CourseKey,
		rm.ModeSlug, rm.SKU, rm.RunKey, rm.StartDate).
		Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt)
	return mapWriteErr(err, "run mode %s/%s", rm.CourseKey, rm.ModeSlug)
}

// UpdateRunMode updates a run mode's mutable fields.
func (r *Repository) UpdateRunMode(ctx context.Context, rm *models.ProgramCourseRunMode) error {
	const q = `UPDATE program_course_run_modes
		SET lms_url = NULLIF($2,''), course_key = $3, mode_slug = $4,
			sku = NULLIF($5,''), run_key = $6, start_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, rm.ID, rm.LMSURL, rm.CourseKey, rm.ModeSlug,
		rm.SKU, rm.RunKey, rm.StartDate).Scan(&rm.UpdatedAt)
	return mapWriteErr(err, "run mode %s/%s", rm.CourseKey, rm.ModeSlug)
}

// ListRunModes returns run modes under a curriculum link.
func (r *Repository) ListRunModes(ctx context.Context, programCourseCodeID uuid.UUID) ([]models.ProgramCourseRunMode, error) {
	const q = `SELECT id, program_course_code_id, COALESCE(lms_url,''), course_key, mode_slug,
			COALESCE(sku,''), run_key, start_date, created_at, updated_at
		FROM program_course_run_modes WHERE program_course_code_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, programCourseCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ProgramCourseRunMode
	for rows.Next() {
		var rm models.ProgramCourseRunMode
		if err := rows.Scan(&rm.ID, &rm.ProgramCourseCodeID, &rm.LMSURL, &rm.CourseKey, &rm.ModeSlug,
			&rm.SKU, &rm.RunKey, &rm.StartDate, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rm)
	}
	return list, rows.Err()
}

// DuplicateRunModeExists scans for a matching tuple, comparing sku with ""
// standing in for NULL so the engine's NULL-distinct semantics cannot admit
// a second missing-sku row.
func (r *Repository) DuplicateRunModeExists(ctx context.Context, programCourseCodeID uuid.UUID, courseKey, modeSlug, sku string, excludeID uuid.UUID) (bool, error) {
	const q = `SELECT 1 FROM program_course_run_modes
		WHERE program_course_code_id = $1 AND course_key = $2 AND mode_slug = $3
			AND COALESCE(sku, '') = $4 AND id <> $5`
	return r.exists(ctx, q, programCourseCodeID, courseKey, modeSlug, sku, excludeID)
}

// GetDefault returns the singleton fallback record, creating the zero row on
// first access.
func (r *Repository) GetDefault(ctx context.Context) (*models.ProgramDefault, error) {
	const q = `SELECT COALESCE(banner_image,''), updated_at FROM program_defaults WHERE id = TRUE`
	var d models.ProgramDefault
	err := r.pool.QueryRow(ctx, q).Scan(&d.BannerImage, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.SetDefault(ctx, "")
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SetDefault upserts the singleton fallback record.
func (r *Repository) SetDefault(ctx context.Context, bannerImage string) (*models.ProgramDefault, error) {
	const q = `INSERT INTO program_defaults (id, banner_image)
		VALUES (TRUE, NULLIF($1,''))
		ON CONFLICT (id) DO UPDATE SET banner_image = EXCLUDED.banner_image, updated_at = NOW()
		RETURNING COALESCE(banner_image,''), updated_at`
	var d models.ProgramDefault
	if err := r.pool.QueryRow(ctx, q, bannerImage).Scan(&d.BannerImage, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) exists(ctx context.Context, q string, args ...interface{}) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, q, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func mapWriteErr(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", models.ErrConflict, fmt.Sprintf(format, args...))
	}
	return err
}
