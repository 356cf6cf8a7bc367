// Package authz implements the role and scope based authorization engine for
// the admin panel. Every predicate is a pure function of its inputs: callers
// load the actor and the target record, the engine only answers allow/deny.
package authz

import "strings"

// Role is the closed set of privilege tiers. Raw strings from the store are
// converted exactly once, at the boundary, through NormalizeRole.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleHOD       Role = "hod"
	RoleFaculty   Role = "faculty"
	RoleStudent   Role = "student"
)

// NormalizeRole maps untrusted role text to a Role. Unknown, empty or garbled
// input degrades to RoleStudent so that an unidentifiable role can never gain
// elevated capabilities.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RolePrincipal:
		return RolePrincipal
	case RoleHOD:
		return RoleHOD
	case RoleFaculty:
		return RoleFaculty
	default:
		return RoleStudent
	}
}

// IsRoleAllowed reports whether the role may enter the admin panel at all.
// Students only ever see their own data through the public app.
func IsRoleAllowed(raw string) bool {
	return NormalizeRole(raw) != RoleStudent
}

// IsAdmin reports whether the role is admin.
func IsAdmin(r Role) bool { return r == RoleAdmin }

// IsPrincipal reports whether the role is principal.
func IsPrincipal(r Role) bool { return r == RolePrincipal }

// IsAdminOrPrincipal reports whether the role holds institution-wide access.
func IsAdminOrPrincipal(r Role) bool { return r == RoleAdmin || r == RolePrincipal }

// IsHOD reports whether the role is head of department.
func IsHOD(r Role) bool { return r == RoleHOD }

// IsFaculty reports whether the role is faculty.
func IsFaculty(r Role) bool { return r == RoleFaculty }

// IsStudent reports whether the role is student.
func IsStudent(r Role) bool { return r == RoleStudent }
