// Package notices manages campus announcements with optional branch
// targeting and background fan-out to recipients.
package notices

import (
	"time"
)

// Audience narrows who a notice is published to.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceBranch   Audience = "branch"
	AudienceFaculty  Audience = "faculty"
	AudienceStudents Audience = "students"
)

// Notice is a published announcement.
type Notice struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Audience  Audience  `json:"audience"`
	Branch    string    `json:"branch,omitempty"`
	PostedBy  int64     `json:"posted_by"`
	PostedAt  time.Time `json:"posted_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
