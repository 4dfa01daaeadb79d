package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseCode represents a course independent of run / mode. It links multiple
// runs / modes of the same course offering within a program, both for
// presentation and for program-completion logic (one completed run per course
// code indicates completion of the program).
type CourseCode struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Key            string    `json:"key"`
	DisplayName    string    `json:"display_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgramCourseCode places a CourseCode into a Program's curriculum at an
// ordered position. Positions are 1-based, dense per program, and never
// reused.
type ProgramCourseCode struct {
	ID           uuid.UUID `json:"id"`
	ProgramID    uuid.UUID `json:"program_id"`
	CourseCodeID uuid.UUID `json:"course_code_id"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProgramCourseRunMode represents a specific run and mode of a course in a
// specific LMS, within the context of a program. RunKey is derived from
// CourseKey at write time.
type ProgramCourseRunMode struct {
	ID                  uuid.UUID  `json:"id"`
	ProgramCourseCodeID uuid.UUID  `json:"program_course_code_id"`
	LMSURL              string     `json:"lms_url,omitempty"`
	CourseKey           string     `json:"course_key"`
	ModeSlug            string     `json:"mode_slug"`
	SKU                 string     `json:"sku,omitempty"`
	RunKey              string     `json:"run_key"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
