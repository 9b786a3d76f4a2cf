package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/membergate/membergate/internal/model"
)

// Register handles a registration submission. Checks run in order:
// registration switch, CAPTCHA, email syntax, identifier uniqueness. Only
// when all of them pass is the identity created on the host platform, with a
// generated password the member never sees.
func (f *Flow) Register(ctx context.Context, form url.Values) model.FormResult {
	settings, err := f.settings.Load(ctx)
	if err != nil {
		f.logger.Error("Flow service: failed to load settings for registration",
			"error", err.Error())
		return registerFailure(model.CodeUnknown)
	}

	if !settings.RegistrationOpen {
		return registerFailure(model.CodeRegistrationClosed)
	}

	if !f.captcha.Verify(ctx, settings.CaptchaSecretKey, form.Get(fieldCaptchaResponse)) {
		return registerFailure(model.CodeCaptcha)
	}

	email := strings.TrimSpace(form.Get(fieldEmail))
	if err := f.validate.Var(email, "required,email"); err != nil {
		return registerFailure(model.CodeEmail)
	}

	exists, err := f.identity.IdentifierExists(ctx, email)
	if err != nil {
		f.logger.Error("Flow service: identifier lookup failed",
			"email", email,
			"error", err.Error())
		return registerFailure(model.CodeUnknown)
	}
	if exists {
		return registerFailure(model.CodeEmailExists)
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		f.logger.Error("Flow service: failed to generate password",
			"error", err.Error())
		return registerFailure(model.CodeUnknown)
	}

	role := settings.NewUserDefaultRole
	if role == "" {
		role = model.RoleStandard
	}

	identity, err := f.identity.CreateIdentity(ctx, model.NewIdentity{
		Email:     email,
		FirstName: strings.TrimSpace(form.Get(fieldFirstName)),
		LastName:  strings.TrimSpace(form.Get(fieldLastName)),
		Password:  password,
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return registerFailure(model.CodeEmailExists)
		}
		var codesErr *model.CodesError
		if errors.As(err, &codesErr) {
			return registerFailure(codesErr.Codes...)
		}
		f.logger.Error("Flow service: identity creation failed",
			"email", email,
			"error", err.Error())
		return registerFailure(model.CodeUnknown)
	}

	// The account exists now; a lost notification must not fail the flow.
	if err := f.identity.SendNotification(ctx, newUserNotification(email)); err != nil {
		f.logger.Warn("Flow service: new-user notification failed",
			"email", email,
			"error", err.Error())
	}

	f.logger.Info("Flow service: registration completed",
		"email", email,
		"identity_id", identity.ID)

	return model.FormSuccess(PageURL(model.RouteLogin, url.Values{"registered": {email}}))
}

func registerFailure(codes ...model.ErrorCode) model.FormResult {
	return model.FormFailure(failureURL(model.RouteRegister, paramRegisterErrors, codes, nil), codes...)
}

func newUserNotification(email string) model.Notification {
	body := "Welcome!\r\n\r\n" +
		"Your account has been created. Check your email for your credentials " +
		"and sign in once you have them.\r\n"

	return model.Notification{
		Recipient: email,
		Subject:   "Your new account",
		Body:      body,
	}
}
