// Package timetable manages class schedules. Reads are open to every
// authenticated actor; writes are section scoped through the authz engine.
package timetable

import (
	"time"

	"github.com/meridian-lms/meridian-lms/internal/authz"
)

// Entry is one scheduled class slot for a section.
type Entry struct {
	ID        int64          `json:"id"`
	Branch    string         `json:"branch"`
	Semester  authz.Semester `json:"semester"`
	Section   string         `json:"section"`
	DayOfWeek int            `json:"day_of_week"`
	Period    int            `json:"period"`
	CourseID  int64          `json:"course_id"`
	FacultyID int64          `json:"faculty_id"`
	Room      string         `json:"room"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SectionRef builds the authz reference for this entry.
func (e Entry) SectionRef() authz.SectionRef {
	return authz.SectionRef{Branch: e.Branch, Semester: e.Semester, Section: e.Section}
}
