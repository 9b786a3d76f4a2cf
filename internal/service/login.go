package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/membergate/membergate/internal/model"
)

// Authenticate handles a login submission. Credential failures come back as
// a redirect to the login page carrying the host-reported error codes; a
// successful login yields the session to store in the member cookie plus the
// policy-decided destination.
func (f *Flow) Authenticate(ctx context.Context, form url.Values) (model.Session, model.FormResult) {
	identifier := form.Get(fieldLogin)
	password := form.Get(fieldPassword)

	var codes []model.ErrorCode
	if identifier == "" {
		codes = append(codes, model.CodeEmptyUsername)
	}
	if password == "" {
		codes = append(codes, model.CodeEmptyPassword)
	}
	if len(codes) > 0 {
		return model.Session{}, loginFailure(codes...)
	}

	session, err := f.identity.Authenticate(ctx, identifier, password)
	if err != nil {
		var codesErr *model.CodesError
		if errors.As(err, &codesErr) {
			return model.Session{}, loginFailure(codesErr.Codes...)
		}
		f.logger.Error("Flow service: authentication failed upstream",
			"identifier", identifier,
			"error", err.Error())
		return model.Session{}, loginFailure(model.CodeUnknown)
	}

	destination := f.loggedInDestination(ctx, session, form.Get(fieldRedirectTo))

	f.logger.Info("Flow service: login completed",
		"identifier", identifier)

	return session, model.FormSuccess(destination)
}

// Logout ends the session and returns the login-page redirect with the
// logged-out marker. An already-dead session is not an error.
func (f *Flow) Logout(ctx context.Context, sessionToken string) string {
	if sessionToken != "" {
		if err := f.identity.EndSession(ctx, sessionToken); err != nil && !errors.Is(err, model.ErrNoSession) {
			f.logger.Warn("Flow service: failed to end session",
				"error", err.Error())
		}
	}

	return PageURL(model.RouteLogin, url.Values{"logged_out": {"true"}})
}

// loggedInDestination resolves the post-login target through the redirect
// policy. When role or settings cannot be resolved the account page is the
// safe default.
func (f *Flow) loggedInDestination(ctx context.Context, session model.Session, requestedRedirect string) string {
	identity, err := f.identity.CurrentIdentity(ctx, session.Token)
	if err != nil {
		f.logger.Warn("Flow service: could not resolve identity after login",
			"error", err.Error())
		return model.RouteAccount.Path()
	}

	settings, err := f.settings.Load(ctx)
	if err != nil {
		f.logger.Warn("Flow service: could not load settings after login",
			"error", err.Error())
		return model.RouteAccount.Path()
	}

	return f.policy.LoggedInTarget(identity, requestedRedirect, settings)
}

func loginFailure(codes ...model.ErrorCode) model.FormResult {
	return model.FormFailure(failureURL(model.RouteLogin, paramLoginErrors, codes, nil), codes...)
}
