package model

import "net/url"

// RequestContext is the request-scoped value handed to the redirect policy
// and form handlers. It replaces any ambient "current request" lookup; it is
// created per request and discarded with the response.
type RequestContext struct {
	Method string
	Route  Route
	Query  url.Values
	Form   url.Values
	// Identity is nil for anonymous visitors.
	Identity *Identity
	// RedirectTo is the raw requested redirect target, not yet validated.
	RedirectTo string
}

// Authenticated reports whether the request carries a signed-in identity.
func (rc RequestContext) Authenticated() bool {
	return rc.Identity != nil
}
