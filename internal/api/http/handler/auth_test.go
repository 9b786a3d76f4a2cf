package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/membergate/membergate/internal/api/http/context"
	"github.com/membergate/membergate/internal/mocks"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/service"
	"github.com/membergate/membergate/internal/testutil"
)

// stubFlow implements FlowService with pluggable behavior per test.
type stubFlow struct {
	authenticate  func(form url.Values) (model.Session, model.FormResult)
	logout        func(sessionToken string) string
	register      func(form url.Values) model.FormResult
	lostPassword  func(form url.Values) model.FormResult
	resetPassword func(form url.Values) (model.FormResult, error)
	checkToken    func(token model.ResetToken) string
}

func (s *stubFlow) Authenticate(_ context.Context, form url.Values) (model.Session, model.FormResult) {
	return s.authenticate(form)
}

func (s *stubFlow) Logout(_ context.Context, sessionToken string) string {
	return s.logout(sessionToken)
}

func (s *stubFlow) Register(_ context.Context, form url.Values) model.FormResult {
	return s.register(form)
}

func (s *stubFlow) LostPassword(_ context.Context, form url.Values) model.FormResult {
	return s.lostPassword(form)
}

func (s *stubFlow) ResetPassword(_ context.Context, form url.Values) (model.FormResult, error) {
	return s.resetPassword(form)
}

func (s *stubFlow) CheckResetToken(_ context.Context, token model.ResetToken) string {
	return s.checkToken(token)
}

type authFixture struct {
	handler        *Auth
	flow           *stubFlow
	settings       *mocks.SettingsStore
	renderer       *mocks.PageRenderer
	contextManager *apicontext.Manager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	policy, err := service.NewPolicy("http://example.com", "/admin")
	require.NoError(t, err)

	flow := &stubFlow{}
	settings := mocks.NewSettingsStore(t)
	renderer := mocks.NewPageRenderer(t)
	contextManager := apicontext.NewManager()

	h := NewAuth(flow, policy, settings, renderer, contextManager,
		CookieConfig{Name: "member_session"}, testutil.MakeNoopLogger())

	return &authFixture{
		handler:        h,
		flow:           flow,
		settings:       settings,
		renderer:       renderer,
		contextManager: contextManager,
	}
}

func (f *authFixture) request(t *testing.T, method, target string, form url.Values, identity *model.Identity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if identity != nil {
		ctx := f.contextManager.SetIdentityToContext(req.Context(), *identity)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func (f *authFixture) expectRender(template string, check func(attrs model.PageAttributes)) {
	f.renderer.On("Render", mock.Anything, mock.Anything, template, mock.Anything).
		Run(func(args mock.Arguments) {
			check(args.Get(3).(model.PageAttributes))
		}).
		Return(nil).Once()
}

func TestAuth_ShowLogin(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitor gets the page with notices and errors", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.DefaultSettings(), nil).Once()
		f.expectRender("login-form", func(attrs model.PageAttributes) {
			assert.Equal(t, []string{"You are now logged out."}, attrs["Notices"])
			assert.Equal(t, []string{"You need to enter a password to login."}, attrs["Errors"])
			assert.Equal(t, "/members", attrs["RedirectTo"])
		})

		c, rec := f.request(t, http.MethodGet, "/login?logged_out=true&login=empty_password&redirect_to=%2Fmembers", nil, nil)

		require.NoError(t, f.handler.ShowLogin(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("signed-in member is sent to the account page", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.DefaultSettings(), nil).Once()

		identity := model.Identity{ID: uuid.New(), Email: "ada@example.com", Role: model.RoleStandard}
		c, rec := f.request(t, http.MethodGet, "/login", nil, &identity)

		require.NoError(t, f.handler.ShowLogin(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/account", rec.Header().Get("Location"))
	})

	t.Run("signed-in admin honors a validated redirect_to", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.DefaultSettings(), nil).Once()

		identity := model.Identity{ID: uuid.New(), Email: "root@example.com", Role: model.RoleAdmin}
		c, rec := f.request(t, http.MethodGet, "/login?redirect_to=%2Freports", nil, &identity)

		require.NoError(t, f.handler.ShowLogin(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reports", rec.Header().Get("Location"))
	})

	t.Run("settings outage still renders the page", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.Settings{}, assert.AnError).Once()
		f.expectRender("login-form", func(model.PageAttributes) {})

		c, rec := f.request(t, http.MethodGet, "/login", nil, nil)

		require.NoError(t, f.handler.ShowLogin(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuth_ShowRegister(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	settings := model.DefaultSettings()
	settings.CaptchaSiteKey = "site-key"
	f.settings.On("Load", mock.Anything).Return(settings, nil).Once()
	f.expectRender("register-form", func(attrs model.PageAttributes) {
		assert.Equal(t, "site-key", attrs["CaptchaSiteKey"])
		assert.Equal(t, []string{"An account exists with this email address."}, attrs["Errors"])
	})

	c, rec := f.request(t, http.MethodGet, "/register?register-errors=email_exists", nil, nil)

	require.NoError(t, f.handler.ShowRegister(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_SubmitLogin(t *testing.T) {
	t.Parallel()

	t.Run("success stores the session cookie", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		session := model.Session{Token: "session-token", ExpiresAt: time.Now().Add(time.Hour)}
		f.flow.authenticate = func(form url.Values) (model.Session, model.FormResult) {
			assert.Equal(t, "ada@example.com", form.Get("log"))
			return session, model.FormSuccess("/account")
		}

		form := url.Values{"log": {"ada@example.com"}, "pwd": {"secret"}}
		c, rec := f.request(t, http.MethodPost, "/login", form, nil)

		require.NoError(t, f.handler.SubmitLogin(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/account", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "member_session", cookies[0].Name)
		assert.Equal(t, "session-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("failure redirects without a cookie", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.flow.authenticate = func(url.Values) (model.Session, model.FormResult) {
			return model.Session{}, model.FormFailure("/login?login=incorrect_password", model.CodeIncorrectPassword)
		}

		form := url.Values{"log": {"ada@example.com"}, "pwd": {"wrong"}}
		c, rec := f.request(t, http.MethodPost, "/login", form, nil)

		require.NoError(t, f.handler.SubmitLogin(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?login=incorrect_password", rec.Header().Get("Location"))
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.flow.logout = func(sessionToken string) string {
		assert.Equal(t, "session-token", sessionToken)
		return "/login?logged_out=true"
	}

	c, rec := f.request(t, http.MethodGet, "/logout", nil, nil)
	c.Request().AddCookie(&http.Cookie{Name: "member_session", Value: "session-token"})

	require.NoError(t, f.handler.Logout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?logged_out=true", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "member_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuth_ShowResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("usable token renders the form with the token pair", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.DefaultSettings(), nil).Once()
		f.flow.checkToken = func(token model.ResetToken) string {
			assert.Equal(t, model.ResetToken{Login: "ada", Key: "reset-key"}, token)
			return ""
		}
		f.expectRender("password-reset-form", func(attrs model.PageAttributes) {
			assert.Equal(t, "reset-key", attrs["Key"])
			assert.Equal(t, "ada", attrs["Login"])
		})

		c, rec := f.request(t, http.MethodGet, "/reset-password?key=reset-key&login=ada", nil, nil)

		require.NoError(t, f.handler.ShowResetPassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unusable token redirects to the login page", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.settings.On("Load", mock.Anything).Return(model.DefaultSettings(), nil).Once()
		f.flow.checkToken = func(model.ResetToken) string {
			return "/login?login=expiredkey"
		}

		c, rec := f.request(t, http.MethodGet, "/reset-password?key=old&login=ada", nil, nil)

		require.NoError(t, f.handler.ShowResetPassword(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?login=expiredkey", rec.Header().Get("Location"))
	})
}

func TestAuth_SubmitResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("redirects where the flow says", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.flow.resetPassword = func(url.Values) (model.FormResult, error) {
			return model.FormSuccess("/login?password=changed"), nil
		}

		form := url.Values{"rp_key": {"reset-key"}, "rp_login": {"ada"}, "pass1": {"new"}, "pass2": {"new"}}
		c, rec := f.request(t, http.MethodPost, "/reset-password", form, nil)

		require.NoError(t, f.handler.SubmitResetPassword(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?password=changed", rec.Header().Get("Location"))
	})

	t.Run("malformed submission is a bare 400", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.flow.resetPassword = func(url.Values) (model.FormResult, error) {
			return model.FormResult{}, model.ErrMalformedRequest
		}

		form := url.Values{"rp_key": {"reset-key"}, "rp_login": {"ada"}}
		c, _ := f.request(t, http.MethodPost, "/reset-password", form, nil)

		err := f.handler.SubmitResetPassword(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestAuth_ShowAccount(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitor is sent to login", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)

		c, rec := f.request(t, http.MethodGet, "/account", nil, nil)

		require.NoError(t, f.handler.ShowAccount(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?redirect_to=%2Faccount", rec.Header().Get("Location"))
	})

	t.Run("signed-in member sees their account", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t)
		f.expectRender("account-info-form", func(attrs model.PageAttributes) {
			assert.Equal(t, "ada@example.com", attrs["Email"])
			assert.Equal(t, "standard", attrs["Role"])
		})

		identity := model.Identity{ID: uuid.New(), Email: "ada@example.com", Role: model.RoleStandard}
		c, rec := f.request(t, http.MethodGet, "/account", nil, &identity)

		require.NoError(t, f.handler.ShowAccount(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuth_SubmitRegister(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.flow.register = func(form url.Values) model.FormResult {
		assert.Equal(t, "ada@example.com", form.Get("email"))
		return model.FormSuccess("/login?registered=ada%40example.com")
	}

	form := url.Values{"email": {"ada@example.com"}}
	c, rec := f.request(t, http.MethodPost, "/register", form, nil)

	require.NoError(t, f.handler.SubmitRegister(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?registered=ada%40example.com", rec.Header().Get("Location"))
}

func TestAuth_SubmitLostPassword(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.flow.lostPassword = func(form url.Values) model.FormResult {
		assert.Equal(t, "ada@example.com", form.Get("user_login"))
		return model.FormSuccess("/login?checkemail=confirm")
	}

	form := url.Values{"user_login": {"ada@example.com"}}
	c, rec := f.request(t, http.MethodPost, "/lost-password", form, nil)

	require.NoError(t, f.handler.SubmitLostPassword(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?checkemail=confirm", rec.Header().Get("Location"))
}
