package authz

// Page identifies a navigable screen in the admin panel.
type Page string

const (
	PageDashboard   Page = "dashboard"
	PageBranches    Page = "branches"
	PageCourses     Page = "courses"
	PageTimetable   Page = "timetable"
	PageUsers       Page = "users"
	PageStudents    Page = "students"
	PageAssignments Page = "assignments"
	PageEvents      Page = "events"
	PageNotices     Page = "notices"
	PageAnalytics   Page = "analytics"
	PageAttendance  Page = "attendance"
	PageResults     Page = "results"
)

// Action is a CRUD verb gated per role.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ScopeKind is the breadth of records a role may act on.
type ScopeKind string

const (
	ScopeAll        ScopeKind = "all"
	ScopeDepartment ScopeKind = "department"
	ScopeAssigned   ScopeKind = "assigned"
	ScopeOwn        ScopeKind = "own"
)

// Capability bundles the static grants of a single role.
type Capability struct {
	Pages           []Page
	Actions         map[Action]bool
	Scope           ScopeKind
	CanManageAdmins bool
}

// capabilities is the per-role grant table. It is constructed once and never
// mutated at runtime; page order matches the navigation display order.
var capabilities = map[Role]Capability{
	RoleAdmin: {
		Pages: []Page{
			PageDashboard, PageBranches, PageCourses, PageTimetable, PageUsers,
			PageStudents, PageAssignments, PageEvents, PageNotices, PageAnalytics,
			PageAttendance, PageResults,
		},
		Actions:         map[Action]bool{ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true},
		Scope:           ScopeAll,
		CanManageAdmins: true,
	},
	RolePrincipal: {
		Pages: []Page{
			PageDashboard, PageBranches, PageCourses, PageTimetable, PageUsers,
			PageStudents, PageAssignments, PageEvents, PageNotices, PageAnalytics,
			PageAttendance, PageResults,
		},
		Actions: map[Action]bool{ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true},
		Scope:   ScopeAll,
	},
	RoleHOD: {
		Pages: []Page{
			PageDashboard, PageCourses, PageTimetable, PageStudents, PageAssignments,
			PageEvents, PageNotices, PageAnalytics, PageAttendance, PageResults,
		},
		Actions: map[Action]bool{ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true},
		Scope:   ScopeDepartment,
	},
	RoleFaculty: {
		Pages: []Page{
			PageTimetable, PageStudents, PageAssignments, PageNotices, PageEvents,
			PageAttendance, PageResults,
		},
		Actions: map[Action]bool{ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: false},
		Scope:   ScopeAssigned,
	},
	RoleStudent: {
		Pages: []Page{
			PageDashboard, PageTimetable, PageAssignments, PageNotices, PageEvents,
		},
		Actions: map[Action]bool{ActionCreate: false, ActionRead: true, ActionUpdate: false, ActionDelete: false},
		Scope:   ScopeOwn,
	},
}

// HasPageAccess reports whether the role may open the given page.
func HasPageAccess(r Role, page Page) bool {
	cap, ok := capabilities[r]
	if !ok {
		return false
	}
	for _, p := range cap.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// HasActionAccess reports whether the role may perform the CRUD action.
func HasActionAccess(r Role, action Action) bool {
	cap, ok := capabilities[r]
	if !ok {
		return false
	}
	return cap.Actions[action]
}

// AccessiblePages returns the pages the role may open, in navigation order.
// The returned slice is a copy; callers may not reorder the table through it.
func AccessiblePages(r Role) []Page {
	cap, ok := capabilities[r]
	if !ok {
		return nil
	}
	pages := make([]Page, len(cap.Pages))
	copy(pages, cap.Pages)
	return pages
}

// RoleScope returns the record scope granted to the role. Roles missing from
// the table degrade to ScopeOwn.
func RoleScope(r Role) ScopeKind {
	cap, ok := capabilities[r]
	if !ok {
		return ScopeOwn
	}
	return cap.Scope
}
