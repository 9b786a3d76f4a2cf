// Package service implements the authentication-flow core: the redirect
// policy and the form submission handlers for registration, lost-password
// and password-reset. All host platform interaction goes through the
// identity service interface; no handler performs a state-changing call
// before its validation has passed.
package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"

	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
)

// Form field names, matching the markup shipped with the branded pages.
const (
	fieldEmail           = "email"
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldCaptchaResponse = "g-recaptcha-response"
	fieldLogin           = "log"
	fieldPassword        = "pwd"
	fieldUserLogin       = "user_login"
	fieldResetKey        = "rp_key"
	fieldResetLogin      = "rp_login"
	fieldPass1           = "pass1"
	fieldPass2           = "pass2"
	fieldRedirectTo      = "redirect_to"
)

// Error-list query parameters, one per page.
const (
	paramLoginErrors    = "login"
	paramRegisterErrors = "register-errors"
	paramLostErrors     = "errors"
	paramResetError     = "error"
)

// generatedPasswordLength matches the host platform's generated credential
// length for mail-activated accounts.
const generatedPasswordLength = 12

// Flow executes the authentication form flows against the identity service,
// configuration store and CAPTCHA verifier.
type Flow struct {
	identity model.IdentityService
	settings model.SettingsStore
	captcha  model.CaptchaVerifier
	policy   *Policy
	validate *validator.Validate
	siteURL  string
	logger   *logger.Logger
}

// NewFlow creates a Flow service. siteURL is the gateway's public origin,
// used to build reset links in notification mail.
func NewFlow(
	identity model.IdentityService,
	settings model.SettingsStore,
	captcha model.CaptchaVerifier,
	policy *Policy,
	siteURL string,
	logger *logger.Logger,
) *Flow {
	return &Flow{
		identity: identity,
		settings: settings,
		captcha:  captcha,
		policy:   policy,
		validate: validator.New(),
		siteURL:  siteURL,
		logger:   logger,
	}
}

// generatePassword returns a random letters-and-digits password. The member
// never sees it; the host platform mails credentials or an activation link.
func generatePassword(length int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	buf := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random index: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}

	return string(buf), nil
}
