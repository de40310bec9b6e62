package config

import "strings"

const (
	loginRouteVar     = "LOGIN_ROUTE"
	dashboardRouteVar = "DASHBOARD_ROUTE"
	publicRoutesVar   = "PUBLIC_ROUTES"
)

type Routes struct{}

var _ RouteConfig = Routes{}

func (Routes) GetLoginRoute() string {
	return GetEnv(loginRouteVar, "/login")
}

func (Routes) GetDashboardRoute() string {
	return GetEnv(dashboardRouteVar, "/dashboard")
}

// GetPublicRoutes returns the routes a user may view unauthenticated. A
// failed silent refresh on one of these must not redirect the user away.
func (Routes) GetPublicRoutes() []string {
	raw := GetEnv(publicRoutesVar, "/,/login,/signup")
	parts := strings.Split(raw, ",")
	routes := make([]string, 0, len(parts))
	for _, part := range parts {
		if route := strings.TrimSpace(part); route != "" {
			routes = append(routes, route)
		}
	}
	return routes
}
