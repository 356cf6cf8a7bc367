package authz

import "testing"

func TestEveryRoleHasCapabilities(t *testing.T) {
	roles := []Role{RoleAdmin, RolePrincipal, RoleHOD, RoleFaculty, RoleStudent}
	for _, role := range roles {
		if len(AccessiblePages(role)) == 0 {
			t.Errorf("role %q has no accessible pages", role)
		}
		if !HasActionAccess(role, ActionRead) {
			t.Errorf("role %q cannot read", role)
		}
	}
}

func TestDeleteNeverGrantedToFacultyOrStudent(t *testing.T) {
	for _, role := range []Role{RoleFaculty, RoleStudent} {
		if HasActionAccess(role, ActionDelete) {
			t.Errorf("role %q must never hold delete", role)
		}
	}
	for _, role := range []Role{RoleAdmin, RolePrincipal, RoleHOD} {
		if !HasActionAccess(role, ActionDelete) {
			t.Errorf("role %q should hold delete", role)
		}
	}
}

func TestStudentActionGrants(t *testing.T) {
	if HasActionAccess(RoleStudent, ActionCreate) {
		t.Error("student must not create")
	}
	if HasActionAccess(RoleStudent, ActionUpdate) {
		t.Error("student must not update")
	}
	if !HasActionAccess(RoleStudent, ActionRead) {
		t.Error("student must read")
	}
}

func TestPageAccessByRole(t *testing.T) {
	cases := []struct {
		role Role
		page Page
		want bool
	}{
		{RoleAdmin, PageUsers, true},
		{RoleAdmin, PageBranches, true},
		{RolePrincipal, PageUsers, true},
		{RoleHOD, PageUsers, false},
		{RoleHOD, PageBranches, false},
		{RoleHOD, PageAttendance, true},
		{RoleFaculty, PageDashboard, false},
		{RoleFaculty, PageTimetable, true},
		{RoleFaculty, PageUsers, false},
		{RoleStudent, PageDashboard, true},
		{RoleStudent, PageAttendance, false},
		{RoleStudent, PageUsers, false},
	}
	for _, tc := range cases {
		if got := HasPageAccess(tc.role, tc.page); got != tc.want {
			t.Errorf("HasPageAccess(%q, %q) = %v, want %v", tc.role, tc.page, got, tc.want)
		}
	}
}

func TestAccessiblePagesPreservesNavOrder(t *testing.T) {
	pages := AccessiblePages(RoleFaculty)
	want := []Page{PageTimetable, PageStudents, PageAssignments, PageNotices, PageEvents, PageAttendance, PageResults}
	if len(pages) != len(want) {
		t.Fatalf("faculty pages = %v, want %v", pages, want)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Fatalf("faculty pages[%d] = %q, want %q", i, pages[i], want[i])
		}
	}
}

func TestAccessiblePagesReturnsCopy(t *testing.T) {
	pages := AccessiblePages(RoleAdmin)
	pages[0] = Page("tampered")
	if AccessiblePages(RoleAdmin)[0] != PageDashboard {
		t.Fatal("mutating the returned slice leaked into the capability table")
	}
}

func TestRoleScope(t *testing.T) {
	cases := map[Role]ScopeKind{
		RoleAdmin:     ScopeAll,
		RolePrincipal: ScopeAll,
		RoleHOD:       ScopeDepartment,
		RoleFaculty:   ScopeAssigned,
		RoleStudent:   ScopeOwn,
	}
	for role, want := range cases {
		if got := RoleScope(role); got != want {
			t.Errorf("RoleScope(%q) = %q, want %q", role, got, want)
		}
	}
	if got := RoleScope(Role("ghost")); got != ScopeOwn {
		t.Errorf("RoleScope for unknown role = %q, want own", got)
	}
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	ghost := Role("ghost")
	if HasPageAccess(ghost, PageDashboard) {
		t.Error("unknown role gained page access")
	}
	if HasActionAccess(ghost, ActionRead) {
		t.Error("unknown role gained action access")
	}
	if pages := AccessiblePages(ghost); len(pages) != 0 {
		t.Errorf("unknown role has pages %v", pages)
	}
}
