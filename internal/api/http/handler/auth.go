package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/membergate/membergate/internal/catalog"
	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/service"
)

// FlowService executes the authentication form flows.
type FlowService interface {
	Authenticate(ctx context.Context, form url.Values) (model.Session, model.FormResult)
	Logout(ctx context.Context, sessionToken string) string
	Register(ctx context.Context, form url.Values) model.FormResult
	LostPassword(ctx context.Context, form url.Values) model.FormResult
	ResetPassword(ctx context.Context, form url.Values) (model.FormResult, error)
	CheckResetToken(ctx context.Context, token model.ResetToken) string
}

// RedirectPolicy classifies GET requests to the guarded routes.
type RedirectPolicy interface {
	DecideRedirect(rc model.RequestContext, settings model.Settings) service.Decision
}

// CookieConfig describes the member session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Auth serves the authentication pages and their form submissions.
type Auth struct {
	flow           FlowService
	policy         RedirectPolicy
	settings       model.SettingsStore
	renderer       model.PageRenderer
	contextManager model.ContextManager
	cookie         CookieConfig
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	flow FlowService,
	policy RedirectPolicy,
	settings model.SettingsStore,
	renderer model.PageRenderer,
	contextManager model.ContextManager,
	cookie CookieConfig,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		flow:           flow,
		policy:         policy,
		settings:       settings,
		renderer:       renderer,
		contextManager: contextManager,
		cookie:         cookie,
		logger:         logger,
	}
}

// ShowLogin renders the login page or redirects a signed-in visitor away.
func (h *Auth) ShowLogin(c echo.Context) error {
	return h.showPage(c, model.RouteLogin)
}

// ShowRegister renders the registration page.
func (h *Auth) ShowRegister(c echo.Context) error {
	return h.showPage(c, model.RouteRegister)
}

// ShowLostPassword renders the lost-password page.
func (h *Auth) ShowLostPassword(c echo.Context) error {
	return h.showPage(c, model.RouteLostPassword)
}

// ShowResetPassword renders the reset form after the token from the mail
// link has been checked. An unusable token redirects to the login page.
func (h *Auth) ShowResetPassword(c echo.Context) error {
	rc := h.requestContext(c, model.RouteResetPassword)
	settings := h.loadSettings(c)

	if decision := h.policy.DecideRedirect(rc, settings); decision.Redirecting() {
		return c.Redirect(http.StatusFound, decision.Target)
	}

	token := model.ResetToken{
		Login: rc.Query.Get("login"),
		Key:   rc.Query.Get("key"),
	}
	if redirect := h.flow.CheckResetToken(c.Request().Context(), token); redirect != "" {
		return c.Redirect(http.StatusFound, redirect)
	}

	return h.renderPage(c, rc, settings)
}

// ShowAccount renders the account page for a signed-in member.
func (h *Auth) ShowAccount(c echo.Context) error {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request().Context())
	if !ok {
		target := service.PageURL(model.RouteLogin, url.Values{
			"redirect_to": {model.RouteAccount.Path()},
		})
		return c.Redirect(http.StatusFound, target)
	}

	return h.render(c, model.RouteAccount.Template(), model.PageAttributes{
		"Title":   "Your Account",
		"Notices": []string(nil),
		"Errors":  []string(nil),
		"Email":   identity.Email,
		"Role":    string(identity.Role),
	})
}

// Logout ends the member session and always lands on the login page.
func (h *Auth) Logout(c echo.Context) error {
	var sessionToken string
	if cookie, err := c.Cookie(h.cookie.Name); err == nil {
		sessionToken = cookie.Value
	}

	target := h.flow.Logout(c.Request().Context(), sessionToken)
	h.clearSessionCookie(c)

	return c.Redirect(http.StatusFound, target)
}

// SubmitLogin handles the login form.
func (h *Auth) SubmitLogin(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	session, result := h.flow.Authenticate(c.Request().Context(), form)
	if result.Succeeded() {
		h.setSessionCookie(c, session)
	}

	return c.Redirect(http.StatusFound, result.Redirect)
}

// SubmitRegister handles the registration form.
func (h *Auth) SubmitRegister(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	result := h.flow.Register(c.Request().Context(), form)

	return c.Redirect(http.StatusFound, result.Redirect)
}

// SubmitLostPassword handles the reset-initiation form.
func (h *Auth) SubmitLostPassword(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	result := h.flow.LostPassword(c.Request().Context(), form)

	return c.Redirect(http.StatusFound, result.Redirect)
}

// SubmitResetPassword handles the new-password form. A submission missing
// the password fields entirely is not something the shipped form produces,
// so it gets a bare 400 instead of a page.
func (h *Auth) SubmitResetPassword(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	result, err := h.flow.ResetPassword(c.Request().Context(), form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	return c.Redirect(http.StatusFound, result.Redirect)
}

func (h *Auth) showPage(c echo.Context, route model.Route) error {
	rc := h.requestContext(c, route)
	settings := h.loadSettings(c)

	if decision := h.policy.DecideRedirect(rc, settings); decision.Redirecting() {
		return c.Redirect(http.StatusFound, decision.Target)
	}

	return h.renderPage(c, rc, settings)
}

func (h *Auth) requestContext(c echo.Context, route model.Route) model.RequestContext {
	rc := model.RequestContext{
		Method:     c.Request().Method,
		Route:      route,
		Query:      c.QueryParams(),
		RedirectTo: c.QueryParam("redirect_to"),
	}

	if identity, ok := h.contextManager.GetIdentityFromContext(c.Request().Context()); ok {
		rc.Identity = &identity
	}

	return rc
}

// loadSettings falls back to the defaults so a settings-store outage
// degrades page rendering instead of taking the pages down.
func (h *Auth) loadSettings(c echo.Context) model.Settings {
	settings, err := h.settings.Load(c.Request().Context())
	if err != nil {
		h.logger.Error("Auth handler: failed to load settings",
			"error", err.Error())
		return model.DefaultSettings()
	}
	return settings
}

func (h *Auth) renderPage(c echo.Context, rc model.RequestContext, settings model.Settings) error {
	var attrs model.PageAttributes

	switch rc.Route {
	case model.RouteLogin:
		attrs = model.PageAttributes{
			"Title":      "Log In",
			"Notices":    loginNotices(rc.Query),
			"Errors":     queryErrors(rc.Query, "login"),
			"Login":      "",
			"RedirectTo": rc.RedirectTo,
		}
	case model.RouteRegister:
		attrs = model.PageAttributes{
			"Title":          "Register",
			"Notices":        []string(nil),
			"Errors":         queryErrors(rc.Query, "register-errors"),
			"Email":          "",
			"FirstName":      "",
			"LastName":       "",
			"CaptchaSiteKey": settings.CaptchaSiteKey,
			"RedirectTo":     rc.RedirectTo,
		}
	case model.RouteLostPassword:
		attrs = model.PageAttributes{
			"Title":      "Lost Password",
			"Notices":    []string(nil),
			"Errors":     queryErrors(rc.Query, "errors"),
			"Login":      "",
			"RedirectTo": rc.RedirectTo,
		}
	case model.RouteResetPassword:
		attrs = model.PageAttributes{
			"Title":   "Reset Password",
			"Notices": []string(nil),
			"Errors":  queryErrors(rc.Query, "error"),
			"Key":     rc.Query.Get("key"),
			"Login":   rc.Query.Get("login"),
		}
	default:
		return echo.NewHTTPError(http.StatusNotFound)
	}

	return h.render(c, rc.Route.Template(), attrs)
}

func (h *Auth) render(c echo.Context, template string, attrs model.PageAttributes) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)

	if err := h.renderer.Render(c.Request().Context(), c.Response(), template, attrs); err != nil {
		h.logger.Error("Auth handler: render failed",
			"template", template,
			"error", err.Error())
		return err
	}

	return nil
}

func (h *Auth) setSessionCookie(c echo.Context, session model.Session) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Auth) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// queryErrors resolves the error-code list riding under param to messages.
func queryErrors(query url.Values, param string) []string {
	return catalog.MessagesFor(model.DecodeErrorCodes(query.Get(param)))
}

// loginNotices maps the login page's state parameters to notices, in a fixed
// order.
func loginNotices(query url.Values) []string {
	var notices []string

	if query.Get("logged_out") == "true" {
		notices = append(notices, "You are now logged out.")
	}
	if query.Get("registered") != "" {
		notices = append(notices, "Registration complete. Please check your email.")
	}
	if query.Get("checkemail") == "confirm" {
		notices = append(notices, "Check your email for the confirmation link.")
	}
	if query.Get("password") == "changed" {
		notices = append(notices, "Your password has been changed. You can now log in.")
	}

	return notices
}
