package model

// Route enumerates the authentication routes the gateway intercepts.
type Route string

const (
	// RouteLogin is the sign-in page and authentication endpoint.
	RouteLogin Route = "login"
	// RouteRegister is the new-member registration page.
	RouteRegister Route = "register"
	// RouteLostPassword is the password-reset initiation page.
	RouteLostPassword Route = "lost-password"
	// RouteResetPassword is the new-password form reached from the reset mail.
	RouteResetPassword Route = "reset-password"
	// RouteLogout ends the session and returns to the login page.
	RouteLogout Route = "logout"
	// RouteAccount is the signed-in member landing page.
	RouteAccount Route = "account"
)

// Path returns the URL path the route is served on.
func (r Route) Path() string {
	return "/" + string(r)
}

// Template returns the page template identifier rendered for the route.
// Routes without a page of their own return an empty string.
func (r Route) Template() string {
	switch r {
	case RouteLogin:
		return "login-form"
	case RouteRegister:
		return "register-form"
	case RouteLostPassword:
		return "password-lost-form"
	case RouteResetPassword:
		return "password-reset-form"
	case RouteAccount:
		return "account-info-form"
	default:
		return ""
	}
}
