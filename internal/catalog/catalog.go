// Package catalog maps flow error codes to the human-readable messages shown
// on the branded pages. Raw codes are never rendered to the visitor.
package catalog

import "github.com/membergate/membergate/internal/model"

// genericMessage is returned for any code without a catalog entry.
const genericMessage = "An unknown error occurred. Please try again later."

// Note: the lost-password flow historically wanted its own empty_username
// message ("You need to enter your email address to continue."), but the key
// is shared with the login flow and the login message always won. That
// observable behavior is preserved: one entry, login wording.
var messages = map[model.ErrorCode]string{
	// Login
	model.CodeEmptyUsername:     "You do have an email address, right?",
	model.CodeEmptyPassword:     "You need to enter a password to login.",
	model.CodeInvalidUsername:   "We don't have any users with that email address. Maybe you used a different one when signing up?",
	model.CodeIncorrectPassword: "The password you entered wasn't quite right. Did you forget your password?",

	// Registration
	model.CodeEmail:              "The email address you entered is not valid.",
	model.CodeEmailExists:        "An account exists with this email address.",
	model.CodeRegistrationClosed: "Registering new users is currently not allowed.",
	model.CodeCaptcha:            "The CAPTCHA check failed. Are you a robot?",

	// Lost password
	model.CodeInvalidEmail: "There are no users registered with this email address.",
	model.CodeInvalidCombo: "There are no users registered with this email address.",

	// Reset password
	model.CodeExpiredKey:            "The password reset link you used is not valid anymore.",
	model.CodeInvalidKey:            "The password reset link you used is not valid anymore.",
	model.CodePasswordResetMismatch: "The two passwords you entered don't match.",
	model.CodePasswordResetEmpty:    "Sorry, we don't accept empty passwords.",

	model.CodeUnknown: genericMessage,
}

// MessageFor returns the message for a code. It is total: unknown codes map
// to the generic message instead of failing.
func MessageFor(code model.ErrorCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return genericMessage
}

// MessagesFor resolves an ordered code list to its messages.
func MessagesFor(codes []model.ErrorCode) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, MessageFor(code))
	}
	return out
}
