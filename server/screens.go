package server

import (
	"sort"

	"github.com/jrsteele09/crm-console/guard"
	"github.com/jrsteele09/crm-console/session"
)

// Screen is a guarded console page
type Screen struct {
	Path        string
	Title       string
	Requirement guard.Requirement
}

// Screens is the default console route table
func Screens() []Screen {
	return []Screen{
		{Path: RouteSuperDashboard, Title: "Super Dashboard", Requirement: guard.Requirement{AllowedRoles: []string{"admin", "superadmin"}}},
		{Path: RouteDashboard, Title: "Dashboard"},
		{Path: RouteReports, Title: "Reports", Requirement: guard.Requirement{AllowedModules: []string{"reports"}}},
		{Path: RouteReportsHR, Title: "HR Reports", Requirement: guard.Requirement{AllowedModules: []string{"reports"}, AllowedSubmodules: []string{"HR"}}},
		{Path: RouteReportsBDE, Title: "BDE Reports", Requirement: guard.Requirement{AllowedModules: []string{"reports"}, AllowedSubmodules: []string{"BDE"}}},
		{Path: RouteReportsSales, Title: "Sales Reports", Requirement: guard.Requirement{AllowedModules: []string{"reports"}, AllowedSubmodules: []string{"Sales"}}},
		{Path: RouteSettings, Title: "Settings"},
		{Path: RouteProfileAdd, Title: "Profile Submission", Requirement: guard.Requirement{AllowedModules: []string{"profile"}}},
		{Path: RouteRoles, Title: "Role Management", Requirement: guard.Requirement{AllowedModules: []string{"roles"}}},
		{Path: RouteUsers, Title: "User Management", Requirement: guard.Requirement{AllowedModules: []string{"users"}}},
		{Path: RouteCreateUser, Title: "Create User", Requirement: guard.Requirement{AllowedModules: []string{"users"}}},
	}
}

// ApplyOverrides replaces the requirement of known screens and appends screens for
// unknown paths, sorted by path.
func ApplyOverrides(screens []Screen, overrides map[string]guard.Requirement) []Screen {
	out := make([]Screen, 0, len(screens)+len(overrides))
	seen := make(map[string]struct{}, len(screens))
	for _, sc := range screens {
		if req, ok := overrides[sc.Path]; ok {
			sc.Requirement = req
		}
		seen[sc.Path] = struct{}{}
		out = append(out, sc)
	}

	var extra []string
	for path := range overrides {
		if _, ok := seen[path]; !ok {
			extra = append(extra, path)
		}
	}
	sort.Strings(extra)
	for _, path := range extra {
		out = append(out, Screen{Path: path, Title: path, Requirement: overrides[path]})
	}
	return out
}

// FindScreen looks up a screen by exact path
func FindScreen(screens []Screen, path string) (Screen, bool) {
	for _, sc := range screens {
		if sc.Path == path {
			return sc, true
		}
	}
	return Screen{}, false
}

// HomePath is where a logged-in visitor lands when opening a public page
func HomePath(s session.Snapshot) string {
	if s.HasRole("superadmin", "admin") {
		return RouteSuperDashboard
	}
	return RouteDashboard
}

// postLoginPath is where the login form sends a freshly authenticated visitor
func postLoginPath(s session.Snapshot) string {
	switch {
	case s.IsSuperAdmin():
		return RouteSuperDashboard
	case guard.CanSeeModule(s, "dashboard"):
		return RouteDashboard
	default:
		return RouteUnauthorized
	}
}

// NavItem is a sidebar entry
type NavItem struct {
	Label    string
	Path     string
	Active   bool
	Children []NavItem
}

type navEntry struct {
	module   string
	label    string
	path     string
	children []navEntry
}

var navEntries = []navEntry{
	{module: "dashboard", label: "Dashboard", path: RouteDashboard},
	{module: "users", label: "Users", path: RouteUsers},
	{module: "roles", label: "Roles", path: RouteRoles},
	{module: "reports", label: "Reports", path: RouteReports, children: []navEntry{
		{module: "HR", label: "HR", path: RouteReportsHR},
		{module: "BDE", label: "BDE", path: RouteReportsBDE},
		{module: "Sales", label: "Sales", path: RouteReportsSales},
	}},
	{module: "profile", label: "Profile", path: RouteProfileAdd},
	{module: "settings", label: "Settings", path: RouteSettings},
}

// Nav returns the sidebar entries visible to s, marking the one for current as active
func Nav(s session.Snapshot, current string) []NavItem {
	var items []NavItem
	for _, e := range navEntries {
		if !guard.CanSeeModule(s, e.module) {
			continue
		}
		path := e.path
		if e.module == "dashboard" && s.IsSuperAdmin() {
			path = RouteSuperDashboard
		}
		item := NavItem{Label: e.label, Path: path, Active: path == current}
		for _, c := range e.children {
			if !guard.CanSeeSubmodule(s, e.module, c.module) {
				continue
			}
			item.Children = append(item.Children, NavItem{Label: c.label, Path: c.path, Active: c.path == current})
			if c.path == current {
				item.Active = true
			}
		}
		items = append(items, item)
	}
	return items
}
