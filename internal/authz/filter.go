package authz

// FilterByScope narrows a record list to what the actor may see, preserving
// order. Admin and principal see everything, hod and faculty see records whose
// branch equals their department, everyone else sees nothing. Results agree
// with per-record department checks on the same inputs.
func FilterByScope[T any](actor *Actor, records []T, branchOf func(T) string) []T {
	if actor == nil || records == nil {
		return nil
	}
	if IsAdminOrPrincipal(actor.Role) {
		return records
	}
	if !IsHOD(actor.Role) && !IsFaculty(actor.Role) {
		return []T{}
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if actor.departmentMatches(branchOf(rec)) {
			out = append(out, rec)
		}
	}
	return out
}
