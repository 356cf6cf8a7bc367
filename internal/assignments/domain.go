// Package assignments manages coursework assignments. Faculty may only edit
// what they authored; department heads override within their branch.
package assignments

import (
	"time"

	"github.com/meridian-lms/meridian-lms/internal/authz"
)

// Assignment is a piece of coursework published to a section.
type Assignment struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Branch      string         `json:"branch"`
	Semester    authz.Semester `json:"semester"`
	Section     string         `json:"section"`
	CourseID    int64          `json:"course_id"`
	DueAt       time.Time      `json:"due_at"`
	CreatedBy   int64          `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Ref builds the authz reference for modification checks.
func (a Assignment) Ref() authz.AssignmentRef {
	return authz.AssignmentRef{Branch: a.Branch, CreatedBy: a.CreatedBy}
}

// SectionRef builds the authz reference for the target section.
func (a Assignment) SectionRef() authz.SectionRef {
	return authz.SectionRef{Branch: a.Branch, Semester: a.Semester, Section: a.Section}
}
