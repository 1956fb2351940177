package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthRegister = "/auth/register"
	RouteAuthLogin    = "/auth/login"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"

	// Authenticated user routes
	RouteMe = "/me"

	// Directory Routes
	RouteTenants             = "/tenants"
	RouteTenantByID          = "/tenants/{id}"
	RouteOrganizations       = "/organizations"
	RouteOrganizationByID    = "/organizations/{id}"
	RouteOrganizationMembers = "/organizations/{id}/members"

	// Operational Routes
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
