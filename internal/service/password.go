package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/membergate/membergate/internal/model"
)

// LostPassword handles a password-reset initiation. It delegates straight to
// the identity service; when a token comes back the gateway composes the
// reset mail and hands it to the host for delivery.
func (f *Flow) LostPassword(ctx context.Context, form url.Values) model.FormResult {
	identifier := strings.TrimSpace(form.Get(fieldUserLogin))

	token, err := f.identity.InitiatePasswordReset(ctx, identifier)
	if err != nil {
		var codesErr *model.CodesError
		if errors.As(err, &codesErr) {
			return lostPasswordFailure(codesErr.Codes...)
		}
		f.logger.Error("Flow service: password reset initiation failed",
			"identifier", identifier,
			"error", err.Error())
		return lostPasswordFailure(model.CodeUnknown)
	}

	if err := f.identity.SendNotification(ctx, f.resetNotification(identifier, token)); err != nil {
		f.logger.Error("Flow service: reset notification failed",
			"identifier", identifier,
			"error", err.Error())
		return lostPasswordFailure(model.CodeUnknown)
	}

	f.logger.Info("Flow service: password reset mail sent",
		"identifier", identifier)

	redirect := PageURL(model.RouteLogin, url.Values{"checkemail": {"confirm"}})
	if requested := form.Get(fieldRedirectTo); requested != "" {
		redirect = f.policy.SafeRedirect(requested, redirect)
	}

	return model.FormSuccess(redirect)
}

// ResetPassword handles a new-password submission. The reset token is
// validated before anything else; the password is committed only after every
// input check has passed. A submission missing the password fields entirely
// returns ErrMalformedRequest.
func (f *Flow) ResetPassword(ctx context.Context, form url.Values) (model.FormResult, error) {
	token := model.ResetToken{
		Login: form.Get(fieldResetLogin),
		Key:   form.Get(fieldResetKey),
	}

	if err := f.identity.ValidateResetToken(ctx, token); err != nil {
		return model.FormFailure(loginPageWithCode(resetTokenCode(err)), resetTokenCode(err)), nil
	}

	if !form.Has(fieldPass1) {
		return model.FormResult{}, model.ErrMalformedRequest
	}

	pass1 := form.Get(fieldPass1)
	pass2 := form.Get(fieldPass2)

	if pass1 != pass2 {
		return resetPasswordFailure(token, model.CodePasswordResetMismatch), nil
	}
	if pass1 == "" {
		return resetPasswordFailure(token, model.CodePasswordResetEmpty), nil
	}

	if err := f.identity.CommitNewPassword(ctx, token, pass1); err != nil {
		f.logger.Error("Flow service: password commit failed",
			"login", token.Login,
			"error", err.Error())
		return model.FormFailure(loginPageWithCode(resetTokenCode(err)), resetTokenCode(err)), nil
	}

	f.logger.Info("Flow service: password reset completed",
		"login", token.Login)

	return model.FormSuccess(PageURL(model.RouteLogin, url.Values{"password": {"changed"}})), nil
}

// CheckResetToken gates GET navigation to the reset form. It returns the
// login-page redirect for an unusable token and an empty string when the
// form may be rendered.
func (f *Flow) CheckResetToken(ctx context.Context, token model.ResetToken) string {
	if err := f.identity.ValidateResetToken(ctx, token); err != nil {
		return loginPageWithCode(resetTokenCode(err))
	}
	return ""
}

// resetTokenCode maps a token validation failure to its error code. Anything
// that is not explicitly an expired key reports the invalid-key code,
// including upstream failures.
func resetTokenCode(err error) model.ErrorCode {
	if errors.Is(err, model.ErrExpiredResetKey) {
		return model.CodeExpiredKey
	}
	return model.CodeInvalidKey
}

func loginPageWithCode(code model.ErrorCode) string {
	return PageURL(model.RouteLogin, url.Values{paramLoginErrors: {string(code)}})
}

func lostPasswordFailure(codes ...model.ErrorCode) model.FormResult {
	return model.FormFailure(failureURL(model.RouteLostPassword, paramLostErrors, codes, nil), codes...)
}

func resetPasswordFailure(token model.ResetToken, codes ...model.ErrorCode) model.FormResult {
	extra := url.Values{
		"key":   {token.Key},
		"login": {token.Login},
	}
	return model.FormFailure(failureURL(model.RouteResetPassword, paramResetError, codes, extra), codes...)
}

// resetNotification builds the reset mail handed to the host platform for
// delivery.
func (f *Flow) resetNotification(identifier string, token model.ResetToken) model.Notification {
	link := fmt.Sprintf("%s%s?key=%s&login=%s",
		f.siteURL,
		model.RouteResetPassword.Path(),
		url.QueryEscape(token.Key),
		url.QueryEscape(token.Login),
	)

	body := "Hello!\r\n\r\n" +
		fmt.Sprintf("You asked us to reset your password for your account using the email address %s.\r\n\r\n", identifier) +
		"If this was a mistake, or you didn't ask for a password reset, just ignore this email and nothing will happen.\r\n\r\n" +
		"To reset your password, visit the following address:\r\n\r\n" +
		link + "\r\n\r\n" +
		"Thanks!\r\n"

	return model.Notification{
		Recipient: identifier,
		Subject:   "Password reset",
		Body:      body,
	}
}
