package server

import "github.com/meridianhq/go-identity-server/internal/obs"

func (s *Server) initRoutes() {
	// Auth lifecycle
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Routes behind a bearer access token
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.ProtectedMiddleware()...))

	s.RegisterRouteFunc("POST "+RouteTenants, ChainMiddleware(s.CreateTenantHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteTenants, ChainMiddleware(s.ListTenantsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteTenantByID, ChainMiddleware(s.GetTenantHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("PUT "+RouteTenantByID, ChainMiddleware(s.UpdateTenantHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("DELETE "+RouteTenantByID, ChainMiddleware(s.DeleteTenantHandler(), s.ProtectedMiddleware()...))

	s.RegisterRouteFunc("POST "+RouteOrganizations, ChainMiddleware(s.CreateOrganizationHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteOrganizations, ChainMiddleware(s.ListOrganizationsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteOrganizationByID, ChainMiddleware(s.GetOrganizationHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("PUT "+RouteOrganizationByID, ChainMiddleware(s.UpdateOrganizationHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("DELETE "+RouteOrganizationByID, ChainMiddleware(s.DeleteOrganizationHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOrganizationMembers, ChainMiddleware(s.AddMemberHandler(), s.ProtectedMiddleware()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, obs.Handler())
}
