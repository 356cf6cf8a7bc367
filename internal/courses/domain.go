// Package courses serves the course catalogue. The catalogue is readable by
// every authenticated actor; edits stay with branch and campus level roles.
package courses

import (
	"time"

	"github.com/meridian-lms/meridian-lms/internal/authz"
)

// Course is one catalogue entry.
type Course struct {
	ID        int64          `json:"id"`
	Code      string         `json:"code"`
	Title     string         `json:"title"`
	Branch    string         `json:"branch"`
	Semester  authz.Semester `json:"semester"`
	Credits   int            `json:"credits"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
