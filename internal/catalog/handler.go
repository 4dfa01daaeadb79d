package catalog

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/models"
	"github.com/program-catalog/backend/pkg/response"
)

// Handler handles catalog HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ProgramRequest is the body for creating or updating a program.
type ProgramRequest struct {
	Name          string `json:"name" binding:"required"`
	Subtitle      string `json:"subtitle"`
	Category      string `json:"category" binding:"required"`
	Status        string `json:"status"`
	MarketingSlug string `json:"marketing_slug"`
	BannerImage   string `json:"banner_image"`
}

// CreateProgram handles POST /programs.
func (h *Handler) CreateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := &models.Program{
		Name:          req.Name,
		Subtitle:      req.Subtitle,
		Category:      models.ProgramCategory(req.Category),
		Status:        models.ProgramStatus(req.Status),
		MarketingSlug: req.MarketingSlug,
		BannerImage:   req.BannerImage,
	}
	if err := h.svc.CreateProgram(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, p)
}

// UpdateProgram handles PATCH /programs/:id. Unset fields keep their current
// values.
func (h *Handler) UpdateProgram(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	p, err := h.svc.GetProgram(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	var req struct {
		Name          *string `json:"name"`
		Subtitle      *string `json:"subtitle"`
		Category      *string `json:"category"`
		Status        *string `json:"status"`
		MarketingSlug *string `json:"marketing_slug"`
		BannerImage   *string `json:"banner_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Subtitle != nil {
		p.Subtitle = *req.Subtitle
	}
	if req.Category != nil {
		p.Category = models.ProgramCategory(*req.Category)
	}
	if req.Status != nil {
		p.Status = models.ProgramStatus(*req.Status)
	}
	if req.MarketingSlug != nil {
		p.MarketingSlug = *req.MarketingSlug
	}
	if req.BannerImage != nil {
		p.BannerImage = *req.BannerImage
	}
	if err := h.svc.UpdateProgram(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, p)
}

// ListPrograms handles GET /programs with optional status and category
// query filters.
func (h *Handler) ListPrograms(c *gin.Context) {
	f := ListFilter{
		Status:   models.ProgramStatus(c.Query("status")),
		Category: models.ProgramCategory(c.Query("category")),
	}
	if f.Status != "" && !f.Status.Valid() {
		response.BadRequest(c, "invalid status filter")
		return
	}
	if f.Category != "" && !f.Category.Valid() {
		response.BadRequest(c, "invalid category filter")
		return
	}
	programs, err := h.svc.ListPrograms(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, programs)
}

// GetProgram handles GET /programs/:id, resolving the banner fallback.
func (h *Handler) GetProgram(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	p, err := h.svc.GetProgram(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	banner, err := h.svc.BannerImage(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	p.BannerImage = banner
	response.OK(c, p)
}

// OrganizationRequest is the body for creating an organization.
type OrganizationRequest struct {
	Key         string `json:"key" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

// CreateOrganization handles POST /organizations.
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	o := &models.Organization{Key: req.Key, DisplayName: req.DisplayName}
	if err := h.svc.CreateOrganization(c.Request.Context(), o); err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, o)
}

// AssociateOrganization handles POST /programs/:id/organizations.
func (h *Handler) AssociateOrganization(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	var req struct {
		OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	po, err := h.svc.AssociateOrganization(c.Request.Context(), programID, req.OrganizationID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, po)
}

// CourseCodeRequest is the body for creating a course code.
type CourseCodeRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
	Key            string    `json:"key" binding:"required"`
	DisplayName    string    `json:"display_name"`
}

// CreateCourseCode handles POST /course-codes.
func (h *Handler) CreateCourseCode(c *gin.Context) {
	var req CourseCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cc := &models.CourseCode{
		OrganizationID: req.OrganizationID,
		Key:            req.Key,
		DisplayName:    req.DisplayName,
	}
	if err := h.svc.CreateCourseCode(c.Request.Context(), cc); err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, cc)
}

// AddCourseCode handles POST /programs/:id/course-codes.
func (h *Handler) AddCourseCode(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	var req struct {
		CourseCodeID uuid.UUID `json:"course_code_id" binding:"required"`
		Position     int       `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	pcc, err := h.svc.AddCourseCode(c.Request.Context(), programID, req.CourseCodeID, req.Position)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, pcc)
}

// ListCurriculum handles GET /programs/:id/course-codes.
func (h *Handler) ListCurriculum(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	curriculum, err := h.svc.ListCurriculum(c.Request.Context(), programID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, curriculum)
}

// RunModeRequest is the body for creating a run mode.
type RunModeRequest struct {
	LMSURL    string     `json:"lms_url"`
	CourseKey string     `json:"course_key" binding:"required"`
	ModeSlug  string     `json:"mode_slug" binding:"required"`
	SKU       string     `json:"sku"`
	StartDate *time.Time `json:"start_date"`
}

// AddRunMode handles POST /program-course-codes/:id/run-modes.
func (h *Handler) AddRunMode(c *gin.Context) {
	pccID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program course code id")
		return
	}
	var req RunModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rm := &models.ProgramCourseRunMode{
		ProgramCourseCodeID: pccID,
		LMSURL:              req.LMSURL,
		CourseKey:           req.CourseKey,
		ModeSlug:            req.ModeSlug,
		SKU:                 req.SKU,
		StartDate:           req.StartDate,
	}
	if err := h.svc.AddRunMode(c.Request.Context(), rm); err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, rm)
}

// ListRunModes handles GET /program-course-codes/:id/run-modes.
func (h *Handler) ListRunModes(c *gin.Context) {
	pccID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program course code id")
		return
	}
	runModes, err := h.svc.ListRunModes(c.Request.Context(), pccID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, runModes)
}

// GetDefault handles GET /program-defaults.
func (h *Handler) GetDefault(c *gin.Context) {
	d, err := h.svc.GetDefault(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, d)
}

// SetDefault handles PUT /program-defaults.
func (h *Handler) SetDefault(c *gin.Context) {
	var req struct {
		BannerImage string `json:"banner_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	d, err := h.svc.SetDefault(c.Request.Context(), req.BannerImage)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, d)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, models.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		h.logger.Error("catalog request failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
