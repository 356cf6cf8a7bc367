// Package attendance records per-class attendance and aggregates it for
// department digests.
package attendance

import (
	"time"

	"github.com/meridian-lms/meridian-lms/internal/authz"
)

// Status is the recorded state for one student in one class.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// Record is one student's attendance for one class session.
type Record struct {
	ID        int64          `json:"id"`
	StudentID int64          `json:"student_id"`
	Branch    string         `json:"branch"`
	Semester  authz.Semester `json:"semester"`
	Section   string         `json:"section"`
	CourseID  int64          `json:"course_id"`
	Date      time.Time      `json:"date"`
	Period    int            `json:"period"`
	Status    Status         `json:"status"`
	MarkedBy  int64          `json:"marked_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SectionRef builds the authz reference for this record's class.
func (r Record) SectionRef() authz.SectionRef {
	return authz.SectionRef{Branch: r.Branch, Semester: r.Semester, Section: r.Section}
}

// Sheet is a batch of marks for one class session. Faculty submit a full
// sheet per period rather than individual records.
type Sheet struct {
	Branch   string         `json:"branch"`
	Semester authz.Semester `json:"semester"`
	Section  string         `json:"section"`
	CourseID int64          `json:"course_id"`
	Date     time.Time      `json:"date"`
	Period   int            `json:"period"`
	Marks    []Mark         `json:"marks"`
}

// Mark pairs a student with a status inside a sheet.
type Mark struct {
	StudentID int64  `json:"student_id"`
	Status    Status `json:"status"`
}

// SectionRef builds the authz reference for the sheet's class.
func (s Sheet) SectionRef() authz.SectionRef {
	return authz.SectionRef{Branch: s.Branch, Semester: s.Semester, Section: s.Section}
}

// DigestRow is one aggregated line in a department attendance digest.
type DigestRow struct {
	Branch   string         `json:"branch"`
	Semester authz.Semester `json:"semester"`
	Section  string         `json:"section"`
	Present  int            `json:"present"`
	Absent   int            `json:"absent"`
	Late     int            `json:"late"`
}
