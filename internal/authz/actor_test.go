package authz

import (
	"encoding/json"
	"testing"
)

func TestSemesterUnmarshal(t *testing.T) {
	cases := []struct {
		input string
		want  Semester
	}{
		{`5`, "5"},
		{`"5"`, "5"},
		{`" 3 "`, "3"},
		{`null`, ""},
		{`10`, "10"},
	}
	for _, tc := range cases {
		var s Semester
		if err := json.Unmarshal([]byte(tc.input), &s); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.input, err)
		}
		if s != tc.want {
			t.Errorf("unmarshal %s = %q, want %q", tc.input, s, tc.want)
		}
	}
}

func TestSemesterUnmarshalRejectsObjects(t *testing.T) {
	var s Semester
	if err := json.Unmarshal([]byte(`{"value":5}`), &s); err == nil {
		t.Fatal("expected error for object semester")
	}
}

func TestSectionAssignmentUnmarshal_Structured(t *testing.T) {
	var a SectionAssignment
	if err := json.Unmarshal([]byte(`{"branch":"CSE","semester":3,"section":"A"}`), &a); err != nil {
		t.Fatalf("unmarshal structured: %v", err)
	}
	if a.Branch != "CSE" || a.Semester != "3" || a.Section != "A" || a.Raw != "" {
		t.Fatalf("unexpected assignment %+v", a)
	}
}

func TestSectionAssignmentUnmarshal_LegacyString(t *testing.T) {
	var a SectionAssignment
	if err := json.Unmarshal([]byte(`"CSE-3-A"`), &a); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if a.Raw != "CSE-3-A" || a.Branch != "" {
		t.Fatalf("unexpected assignment %+v", a)
	}
}

func TestSectionAssignmentMatches_BothFormsAgree(t *testing.T) {
	ref := SectionRef{Branch: "CSE", Semester: "3", Section: "A"}
	structured := SectionAssignment{Branch: "CSE", Semester: "3", Section: "A"}
	legacy := SectionAssignment{Raw: "CSE-3-A"}

	if !structured.Matches(ref) {
		t.Error("structured assignment should match")
	}
	if !legacy.Matches(ref) {
		t.Error("legacy assignment should match")
	}

	other := SectionRef{Branch: "CSE", Semester: "3", Section: "B"}
	if structured.Matches(other) {
		t.Error("structured assignment matched wrong section")
	}
	if legacy.Matches(other) {
		t.Error("legacy assignment matched wrong section")
	}
}

func TestSectionAssignmentMatches_SemesterStringCoercion(t *testing.T) {
	// Stored semester "3" must match a resource decoded from numeric 3.
	var ref SectionRef
	if err := json.Unmarshal([]byte(`{"branch":"CSE","semester":3,"section":"A"}`), &ref); err != nil {
		t.Fatalf("unmarshal ref: %v", err)
	}
	a := SectionAssignment{Branch: "CSE", Semester: "3", Section: "A"}
	if !a.Matches(ref) {
		t.Fatal("numeric semester failed to match string semester")
	}
}

func TestSectionAssignmentMatches_IncompleteRefNeverMatches(t *testing.T) {
	a := SectionAssignment{Branch: "", Semester: "", Section: ""}
	refs := []SectionRef{
		{},
		{Branch: "CSE"},
		{Branch: "CSE", Semester: "3"},
		{Semester: "3", Section: "A"},
	}
	for _, ref := range refs {
		if a.Matches(ref) {
			t.Errorf("incomplete ref %+v matched empty assignment", ref)
		}
	}
}

func TestActorOwnsSection(t *testing.T) {
	actor := Actor{
		ID:         7,
		Role:       RoleFaculty,
		Department: "CSE",
		AssignedSections: []SectionAssignment{
			{Branch: "CSE", Semester: "3", Section: "A"},
			{Raw: "ECE-5-B"},
		},
	}
	if !actor.OwnsSection(SectionRef{Branch: "CSE", Semester: "3", Section: "A"}) {
		t.Error("structured ownership not recognised")
	}
	if !actor.OwnsSection(SectionRef{Branch: "ECE", Semester: "5", Section: "B"}) {
		t.Error("legacy ownership not recognised")
	}
	if actor.OwnsSection(SectionRef{Branch: "CSE", Semester: "4", Section: "A"}) {
		t.Error("ownership granted for unassigned section")
	}
}

func TestSectionRefKey(t *testing.T) {
	ref := SectionRef{Branch: "MECH", Semester: "1", Section: "C"}
	if got := ref.Key(); got != "MECH-1-C" {
		t.Fatalf("Key() = %q", got)
	}
}
