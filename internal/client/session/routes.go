package session

import (
	"context"
	"strings"
)

// Routes of the CLI. Parameterised routes take the id as the last segment.
const (
	RouteHome            = "/"
	RouteLogin           = "/login"
	RouteSignup          = "/signup"
	RouteResetPassword   = "/reset-password"
	RouteNewPost         = "/new-post"
	RouteEditPost        = "/edit-post"
	RouteProfile         = "/profile"
	RouteProfileSettings = "/profile-settings"
)

// DefaultRoute is where signed-in users land.
const DefaultRoute = RouteHome

var publicRoutes = map[string]struct{}{
	RouteLogin:         {},
	RouteSignup:        {},
	RouteResetPassword: {},
}

// IsPublic reports whether route can be visited without a session.
func IsPublic(route string) bool {
	_, ok := publicRoutes[normalize(route)]
	return ok
}

// Redirect tells where a visit to route should go instead. ok is false
// when the visit may proceed.
func (r *Reconciler) Redirect(ctx context.Context, route string) (target string, ok bool) {
	route = normalize(route)
	_, signedIn := r.Current(ctx)

	switch {
	case !signedIn && !IsPublic(route):
		return RouteLogin, true
	case signedIn && (route == RouteLogin || route == RouteSignup):
		return DefaultRoute, true
	}
	return "", false
}

func normalize(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return RouteHome
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
