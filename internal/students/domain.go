// Package students exposes student records. Access is department scoped:
// instructors see every student in their department, which is deliberately
// wider than the section scope used for timetable and attendance writes.
package students

import (
	"time"

	"github.com/meridian-lms/meridian-lms/internal/authz"
)

// Student represents an enrolled student record.
type Student struct {
	ID         int64          `json:"id"`
	RollNumber string         `json:"roll_number"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	Semester   authz.Semester `json:"semester"`
	Section    string         `json:"section"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
