package model

import "errors"

var (
	// ErrNoSession is returned when a session token is unknown or expired.
	ErrNoSession = errors.New("no active session")
	// ErrEmailTaken is returned when a login identifier is already in use.
	ErrEmailTaken = errors.New("email address already in use")
	// ErrInvalidResetKey is returned for a reset token that was never issued
	// or has been consumed.
	ErrInvalidResetKey = errors.New("password reset key invalid")
	// ErrExpiredResetKey is returned for a reset token past its lifetime.
	ErrExpiredResetKey = errors.New("password reset key expired")
	// ErrMalformedRequest is returned when a submission is missing required
	// fields entirely; it surfaces as a generic invalid-request response.
	ErrMalformedRequest = errors.New("malformed request")
)
