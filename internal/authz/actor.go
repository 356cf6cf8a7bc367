package authz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Semester is the semester identifier compared as text. Upstream records store
// it inconsistently as either a number or a numeral string, so the JSON decoder
// accepts both and every comparison in the engine is plain string equality.
type Semester string

// UnmarshalJSON accepts `5`, `"5"` or null.
func (s *Semester) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Semester(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("authz: semester must be a string or number: %w", err)
	}
	*s = Semester(n.String())
	return nil
}

// SectionRef locates a class section: a (branch, semester, section) triple.
type SectionRef struct {
	Branch   string   `json:"branch"`
	Semester Semester `json:"semester"`
	Section  string   `json:"section"`
}

// Key renders the triple in the legacy single-string encoding.
func (r SectionRef) Key() string {
	return r.Branch + "-" + string(r.Semester) + "-" + r.Section
}

// complete reports whether all three fields are present. Records missing any
// field never match an assignment.
func (r SectionRef) complete() bool {
	return r.Branch != "" && r.Semester != "" && r.Section != ""
}

// SectionAssignment is one section granted to a faculty member. Stored data
// carries two encodings: the structured triple, and a legacy single string
// "branch-semester-section" kept in Raw. Both forms are legal and compare
// equal when they encode the same triple.
type SectionAssignment struct {
	Branch   string   `json:"branch"`
	Semester Semester `json:"semester"`
	Section  string   `json:"section"`
	Raw      string   `json:"-"`
}

// UnmarshalJSON accepts either the structured object or the legacy string form.
func (a *SectionAssignment) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = SectionAssignment{Raw: v}
		return nil
	}
	type structured SectionAssignment
	var v structured
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = SectionAssignment(v)
	return nil
}

// Matches reports whether the assignment grants the referenced section.
func (a SectionAssignment) Matches(ref SectionRef) bool {
	if !ref.complete() {
		return false
	}
	if a.Raw != "" {
		return a.Raw == ref.Key()
	}
	return a.Branch == ref.Branch &&
		string(a.Semester) == string(ref.Semester) &&
		a.Section == ref.Section
}

// Actor is the authenticated user a request runs as. The engine trusts it as
// already authenticated; credential checks happen in the identity layer.
type Actor struct {
	ID               int64
	Role             Role
	Department       string
	AssignedSections []SectionAssignment
}

// OwnsSection reports whether any of the actor's assignments covers the
// referenced section. An actor with no assignments owns nothing.
func (a *Actor) OwnsSection(ref SectionRef) bool {
	for _, s := range a.AssignedSections {
		if s.Matches(ref) {
			return true
		}
	}
	return false
}

// departmentMatches compares the actor's department with a record's branch.
// Exact string equality, no case folding; an empty value on either side never
// matches.
func (a *Actor) departmentMatches(branch string) bool {
	return a.Department != "" && a.Department == branch
}
