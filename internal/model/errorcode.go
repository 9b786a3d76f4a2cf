package model

import "strings"

// ErrorCode is a stable token identifying a user-visible flow error.
// Codes travel between requests as comma-joined query parameter values.
type ErrorCode string

const (
	// Login codes.
	CodeEmptyUsername     ErrorCode = "empty_username"
	CodeEmptyPassword     ErrorCode = "empty_password"
	CodeInvalidUsername   ErrorCode = "invalid_username"
	CodeIncorrectPassword ErrorCode = "incorrect_password"

	// Registration codes.
	CodeEmail              ErrorCode = "email"
	CodeEmailExists        ErrorCode = "email_exists"
	CodeRegistrationClosed ErrorCode = "closed"
	CodeCaptcha            ErrorCode = "captcha"

	// Lost-password codes.
	CodeInvalidEmail ErrorCode = "invalid_email"
	CodeInvalidCombo ErrorCode = "invalidcombo"

	// Reset-password codes.
	CodeExpiredKey            ErrorCode = "expiredkey"
	CodeInvalidKey            ErrorCode = "invalidkey"
	CodePasswordResetMismatch ErrorCode = "password_reset_mismatch"
	CodePasswordResetEmpty    ErrorCode = "password_reset_empty"

	// CodeUnknown stands in for upstream failures that have no flow-specific
	// code. The catalog maps it to the generic retry message.
	CodeUnknown ErrorCode = "unknown"
)

// AllErrorCodes returns every enumerated code. The catalog test walks this
// list to guarantee each code has exactly one message.
func AllErrorCodes() []ErrorCode {
	return []ErrorCode{
		CodeEmptyUsername,
		CodeEmptyPassword,
		CodeInvalidUsername,
		CodeIncorrectPassword,
		CodeEmail,
		CodeEmailExists,
		CodeRegistrationClosed,
		CodeCaptcha,
		CodeInvalidEmail,
		CodeInvalidCombo,
		CodeExpiredKey,
		CodeInvalidKey,
		CodePasswordResetMismatch,
		CodePasswordResetEmpty,
		CodeUnknown,
	}
}

// EncodeErrorCodes joins codes into the comma-separated query parameter form.
func EncodeErrorCodes(codes []ErrorCode) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, string(code))
	}
	return strings.Join(parts, ",")
}

// DecodeErrorCodes splits a comma-separated parameter back into an ordered
// code list. An empty value decodes to nil.
func DecodeErrorCodes(value string) []ErrorCode {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	codes := make([]ErrorCode, 0, len(parts))
	for _, part := range parts {
		codes = append(codes, ErrorCode(part))
	}
	return codes
}
