package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/membergate/membergate/internal/mocks"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/testutil"
)

type flowMocks struct {
	identity *mocks.IdentityService
	settings *mocks.SettingsStore
	captcha  *mocks.CaptchaVerifier
}

func newTestFlow(t *testing.T) (*Flow, flowMocks) {
	t.Helper()

	m := flowMocks{
		identity: mocks.NewIdentityService(t),
		settings: mocks.NewSettingsStore(t),
		captcha:  mocks.NewCaptchaVerifier(t),
	}
	flow := NewFlow(m.identity, m.settings, m.captcha, newTestPolicy(t), "https://example.com", testutil.MakeNoopLogger())

	return flow, m
}

func openSettings() model.Settings {
	return model.Settings{
		RegistrationOpen:   true,
		CaptchaSecretKey:   "secret",
		NewUserDefaultRole: model.RoleStandard,
	}
}

func TestFlow_Register(t *testing.T) {
	t.Parallel()

	form := func(email string) url.Values {
		return url.Values{
			"email":                {email},
			"first_name":           {"Ada"},
			"last_name":            {"Lovelace"},
			"g-recaptcha-response": {"captcha-token"},
		}
	}

	t.Run("registration closed", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(model.Settings{RegistrationOpen: false}, nil).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.False(t, result.Succeeded())
		assert.Equal(t, []model.ErrorCode{model.CodeRegistrationClosed}, result.Errors)
		assert.Equal(t, "/register?register-errors=closed", result.Redirect)
	})

	t.Run("captcha rejection blocks before any identity call", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(false).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.Equal(t, []model.ErrorCode{model.CodeCaptcha}, result.Errors)
		m.identity.AssertNotCalled(t, "CreateIdentity", mock.Anything, mock.Anything)
		m.identity.AssertNotCalled(t, "IdentifierExists", mock.Anything, mock.Anything)
	})

	t.Run("invalid email never reaches identity creation", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()

		result := flow.Register(context.Background(), form("not-an-email"))

		assert.Equal(t, []model.ErrorCode{model.CodeEmail}, result.Errors)
		assert.Equal(t, "/register?register-errors=email", result.Redirect)
		m.identity.AssertNotCalled(t, "CreateIdentity", mock.Anything, mock.Anything)
	})

	t.Run("identifier already in use", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").Return(true, nil).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.Equal(t, []model.ErrorCode{model.CodeEmailExists}, result.Errors)
		m.identity.AssertNotCalled(t, "CreateIdentity", mock.Anything, mock.Anything)
	})

	t.Run("creation race on taken email", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.identity.On("CreateIdentity", mock.Anything, mock.Anything).
			Return(model.Identity{}, model.ErrEmailTaken).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.Equal(t, []model.ErrorCode{model.CodeEmailExists}, result.Errors)
	})

	t.Run("host-reported codes surface on the redirect", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.identity.On("CreateIdentity", mock.Anything, mock.Anything).
			Return(model.Identity{}, model.NewCodesError(model.CodeInvalidEmail, model.CodeEmailExists)).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.Equal(t, []model.ErrorCode{model.CodeInvalidEmail, model.CodeEmailExists}, result.Errors)
		assert.Equal(t, "/register?register-errors=invalid_email%2Cemail_exists", result.Redirect)
	})

	t.Run("upstream failure maps to the generic code", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").
			Return(false, errors.New("upstream down")).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.Equal(t, []model.ErrorCode{model.CodeUnknown}, result.Errors)
	})

	t.Run("success redirects to login with the registered marker", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.identity.On("CreateIdentity", mock.Anything, mock.MatchedBy(func(n model.NewIdentity) bool {
			return n.Email == "ada@example.com" &&
				n.FirstName == "Ada" &&
				n.LastName == "Lovelace" &&
				n.Role == model.RoleStandard &&
				len(n.Password) == generatedPasswordLength
		})).Return(model.Identity{ID: uuid.New(), Email: "ada@example.com", Role: model.RoleStandard}, nil).Once()
		m.identity.On("SendNotification", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.Recipient == "ada@example.com"
		})).Return(nil).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		require.True(t, result.Succeeded())
		assert.Equal(t, "/login?registered=ada%40example.com", result.Redirect)
	})

	t.Run("notification failure does not fail the flow", func(t *testing.T) {
		t.Parallel()

		flow, m := newTestFlow(t)
		m.settings.On("Load", mock.Anything).Return(openSettings(), nil).Once()
		m.captcha.On("Verify", mock.Anything, "secret", "captcha-token").Return(true).Once()
		m.identity.On("IdentifierExists", mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.identity.On("CreateIdentity", mock.Anything, mock.Anything).
			Return(model.Identity{ID: uuid.New()}, nil).Once()
		m.identity.On("SendNotification", mock.Anything, mock.Anything).
			Return(errors.New("mail gateway down")).Once()

		result := flow.Register(context.Background(), form("ada@example.com"))

		assert.True(t, result.Succeeded())
	})
}

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	password, err := generatePassword(generatedPasswordLength)
	require.NoError(t, err)
	assert.Len(t, password, generatedPasswordLength)

	for _, r := range password {
		assert.True(t,
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			"unexpected character %q", r)
	}
}
