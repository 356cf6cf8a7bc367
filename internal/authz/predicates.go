package authz

// Resource references carry the minimum fields the engine compares. Callers
// build them from loaded records; a nil reference always denies.

// StudentRef identifies a student record for access checks.
type StudentRef struct {
	Department string `json:"department"`
}

// UserRef identifies a user account for access checks.
type UserRef struct {
	ID         int64  `json:"id"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}

// AssignmentRef identifies a coursework assignment for modification checks.
type AssignmentRef struct {
	Branch    string `json:"branch"`
	CreatedBy int64  `json:"created_by"`
}

// CanAccessStudentRecord reports whether the actor may view the student.
// Unlike the section-scoped checks, hod AND faculty match on department:
// instructors see every student in their department but only touch the
// sections assigned to them.
func CanAccessStudentRecord(actor *Actor, student *StudentRef) bool {
	if actor == nil || student == nil {
		return false
	}
	switch {
	case IsAdminOrPrincipal(actor.Role):
		return true
	case IsHOD(actor.Role), IsFaculty(actor.Role):
		return actor.departmentMatches(student.Department)
	default:
		return false
	}
}

// CanAccessSection reports whether the actor may act on the section. Faculty
// must hold an explicit assignment for the exact triple; there is no
// department-level fallback.
func CanAccessSection(actor *Actor, section *SectionRef) bool {
	if actor == nil || section == nil {
		return false
	}
	switch {
	case IsAdminOrPrincipal(actor.Role):
		return true
	case IsHOD(actor.Role):
		return actor.departmentMatches(section.Branch)
	case IsFaculty(actor.Role):
		if len(actor.AssignedSections) == 0 {
			return false
		}
		return actor.OwnsSection(*section)
	default:
		return false
	}
}

// CanAccessTimetable reports whether the actor may read a timetable entry.
// Reading is open to every authenticated actor; only writes are scoped.
func CanAccessTimetable(actor *Actor, entry *SectionRef) bool {
	return actor != nil && entry != nil
}

// CanModifyTimetable reports whether the actor may create or update the
// timetable entry. Section-scoped: same ladder as CanAccessSection.
func CanModifyTimetable(actor *Actor, entry *SectionRef) bool {
	return CanAccessSection(actor, entry)
}

// CanMarkAttendance reports whether the actor may record attendance for the
// class. Section-scoped: same ladder as CanAccessSection.
func CanMarkAttendance(actor *Actor, class *SectionRef) bool {
	return CanAccessSection(actor, class)
}

// CanModifyAssignment reports whether the actor may update the assignment.
// Faculty may only touch assignments they authored.
func CanModifyAssignment(actor *Actor, assignment *AssignmentRef) bool {
	if actor == nil || assignment == nil {
		return false
	}
	switch {
	case IsAdminOrPrincipal(actor.Role):
		return true
	case IsHOD(actor.Role):
		return actor.departmentMatches(assignment.Branch)
	case IsFaculty(actor.Role):
		return assignment.CreatedBy != 0 && assignment.CreatedBy == actor.ID
	default:
		return false
	}
}

// CanAccessCourse reports whether the actor may read the course catalogue.
// Courses are a read-only global resource.
func CanAccessCourse(actor *Actor) bool {
	return actor != nil
}

// CanAccessUserRecord reports whether the actor may view the target user.
// An actor always reaches their own record, whatever their role.
func CanAccessUserRecord(actor *Actor, target *UserRef) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID != 0 && actor.ID == target.ID {
		return true
	}
	switch {
	case IsAdmin(actor.Role):
		return true
	case IsPrincipal(actor.Role):
		return target.Role != RoleAdmin
	case IsHOD(actor.Role):
		return actor.departmentMatches(target.Department)
	case IsFaculty(actor.Role):
		return target.Role == RoleStudent && actor.departmentMatches(target.Department)
	default:
		return false
	}
}

// CanManageUsers reports whether a holder of role may create or update a user
// of the target role. A zero target means the target role is not yet known
// (e.g. gating the create-user form).
func CanManageUsers(role, target Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RolePrincipal:
		return target != RoleAdmin
	case RoleHOD:
		return target == RoleFaculty || target == RoleStudent
	default:
		return false
	}
}

// CanChangeRoles reports whether the role may assign or change user roles.
func CanChangeRoles(role Role) bool {
	return IsAdminOrPrincipal(role)
}

// CanDeleteUsers reports whether the role may delete user accounts.
func CanDeleteUsers(role Role) bool {
	return role == RoleAdmin
}
