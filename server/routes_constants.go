package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public routes
	RouteIndex        = "/"
	RouteLogin        = "/login"
	RouteUnauthorized = "/unauthorized"

	// Auth routes
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Console screens
	RouteSuperDashboard = "/admin/super-dashboard"
	RouteDashboard      = "/dashboard"
	RouteReports        = "/admin/reports"
	RouteReportsHR      = "/admin/reports/hr"
	RouteReportsBDE     = "/admin/reports/bde"
	RouteReportsSales   = "/admin/reports/sales"
	RouteSettings       = "/admin/settings"
	RouteProfileAdd     = "/admin/profile-add"
	RouteRoles          = "/admin/usermanagement/roles"
	RouteUsers          = "/admin/usermanagement/users"
	RouteCreateUser     = "/admin/usermanagement/create-user"

	// API routes
	RouteAPISession = "/api/session"

	// Static asset routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
