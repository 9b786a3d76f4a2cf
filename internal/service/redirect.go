package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/membergate/membergate/internal/model"
)

// Decision is the outcome of the redirect policy for an inbound request.
// An empty Target means the page for the current route should be rendered.
type Decision struct {
	Target string
}

// Redirecting reports whether the request must be answered with a redirect.
func (d Decision) Redirecting() bool {
	return d.Target != ""
}

// Policy computes redirect destinations for requests to the guarded routes.
// It holds only immutable site URLs; every method is a pure function of its
// arguments.
type Policy struct {
	siteHost string
	adminURL string
}

// NewPolicy creates a Policy validating redirects against the given site
// base URL. adminURL is the host platform's admin area.
func NewPolicy(baseURL, adminURL string) (*Policy, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("site base url %q has no host", baseURL)
	}

	return &Policy{siteHost: parsed.Host, adminURL: adminURL}, nil
}

// DecideRedirect classifies a GET request to a guarded route. Authenticated
// visitors are sent to their post-login destination; the logout route always
// redirects to the login page with the logged-out marker. Anonymous visitors
// render the page matching the route, with redirect_to and checkemail
// already riding on the request's query string.
func (p *Policy) DecideRedirect(rc model.RequestContext, settings model.Settings) Decision {
	if rc.Route == model.RouteLogout {
		return Decision{Target: PageURL(model.RouteLogin, url.Values{"logged_out": {"true"}})}
	}

	if rc.Authenticated() {
		return Decision{Target: p.LoggedInTarget(*rc.Identity, rc.RedirectTo, settings)}
	}

	return Decision{}
}

// LoggedInTarget returns the destination for an already-authenticated
// visitor. Admins go to the admin area when the admin-redirect setting is
// on; a requested redirect overrides the admin destination only, and only
// after same-site validation. Standard members always land on the account
// page.
func (p *Policy) LoggedInTarget(identity model.Identity, requestedRedirect string, settings model.Settings) string {
	if identity.IsAdmin() && settings.AdminRedirect {
		if requestedRedirect != "" {
			return p.SafeRedirect(requestedRedirect, p.adminURL)
		}
		return p.adminURL
	}

	return model.RouteAccount.Path()
}

// SafeRedirect validates a requested redirect target against the site.
// Relative paths are accepted; absolute URLs must point at the site host.
// Anything else falls back, closing the open-redirect hole.
func (p *Policy) SafeRedirect(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	// Scheme-relative URLs ("//evil.example") parse as relative paths but
	// navigate off-site.
	if strings.HasPrefix(raw, "//") {
		return fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}

	if parsed.Scheme == "" && parsed.Host == "" {
		if strings.HasPrefix(parsed.Path, "/") {
			return raw
		}
		return fallback
	}

	if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host == p.siteHost {
		return raw
	}

	return fallback
}

// PageURL builds the URL of a gateway page with query-encoded state.
func PageURL(route model.Route, params url.Values) string {
	if len(params) == 0 {
		return route.Path()
	}
	return route.Path() + "?" + params.Encode()
}

// failureURL builds the originating page's URL annotated with an ordered
// error-code list under the page's error parameter.
func failureURL(route model.Route, param string, codes []model.ErrorCode, extra url.Values) string {
	params := url.Values{}
	for key, values := range extra {
		params[key] = values
	}
	params.Set(param, model.EncodeErrorCodes(codes))
	return PageURL(route, params)
}
