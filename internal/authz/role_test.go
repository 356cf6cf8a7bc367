package authz

import "testing"

func TestNormalizeRole_KnownSpellings(t *testing.T) {
	cases := map[string]Role{
		"admin":      RoleAdmin,
		"Admin":      RoleAdmin,
		"  ADMIN  ":  RoleAdmin,
		"principal":  RolePrincipal,
		"Principal ": RolePrincipal,
		"hod":        RoleHOD,
		"HOD":        RoleHOD,
		"faculty":    RoleFaculty,
		"FACULTY":    RoleFaculty,
		"student":    RoleStudent,
	}
	for input, want := range cases {
		if got := NormalizeRole(input); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeRole_UnknownFallsBackToStudent(t *testing.T) {
	inputs := []string{"", "   ", "superuser", "adm1n", "teacher", "hod-cse", "principal!", "\t\n"}
	for _, input := range inputs {
		if got := NormalizeRole(input); got != RoleStudent {
			t.Errorf("NormalizeRole(%q) = %q, want student", input, got)
		}
	}
}

func TestIsRoleAllowed(t *testing.T) {
	for _, role := range []string{"admin", "principal", "hod", "faculty"} {
		if !IsRoleAllowed(role) {
			t.Errorf("IsRoleAllowed(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"student", "", "intruder"} {
		if IsRoleAllowed(role) {
			t.Errorf("IsRoleAllowed(%q) = true, want false", role)
		}
	}
}

func TestRolePredicates(t *testing.T) {
	if !IsAdmin(RoleAdmin) || IsAdmin(RolePrincipal) {
		t.Error("IsAdmin misclassified a role")
	}
	if !IsPrincipal(RolePrincipal) || IsPrincipal(RoleAdmin) {
		t.Error("IsPrincipal misclassified a role")
	}
	if !IsAdminOrPrincipal(RoleAdmin) || !IsAdminOrPrincipal(RolePrincipal) || IsAdminOrPrincipal(RoleHOD) {
		t.Error("IsAdminOrPrincipal misclassified a role")
	}
	if !IsHOD(RoleHOD) || IsHOD(RoleFaculty) {
		t.Error("IsHOD misclassified a role")
	}
	if !IsFaculty(RoleFaculty) || IsFaculty(RoleStudent) {
		t.Error("IsFaculty misclassified a role")
	}
	if !IsStudent(RoleStudent) || IsStudent(RoleFaculty) {
		t.Error("IsStudent misclassified a role")
	}
}
