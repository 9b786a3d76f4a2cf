package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role classifies an identity for post-login routing.
type Role string

const (
	// RoleAdmin may be routed to the host platform's admin area.
	RoleAdmin Role = "admin"
	// RoleStandard always lands on the account page.
	RoleStandard Role = "standard"
)

// Identity is the host platform's view of a signed-in user. The gateway
// never owns identities; it queries them per request.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Session is an opaque host-issued session. The gateway stores the token in
// the member session cookie and hands it back on every request.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// NewIdentity carries the fields needed to create an identity on the host.
type NewIdentity struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      Role
}

// ResetToken is the opaque (login, key) pair issued by the host for a
// password reset. The gateway passes it through query parameters and POST
// fields without inspecting it.
type ResetToken struct {
	Login string
	Key   string
}

// Notification is a mail handed to the host platform for delivery.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// IdentityService defines the host platform operations the gateway delegates
// to. Implementations must treat each call as atomic; the gateway never
// holds state across calls.
type IdentityService interface {
	// Authenticate verifies credentials and issues a session. Credential
	// failures are reported as *CodesError.
	Authenticate(ctx context.Context, identifier, password string) (Session, error)
	// CurrentIdentity resolves a session token to the identity it belongs to.
	// Unknown or expired sessions return ErrNoSession.
	CurrentIdentity(ctx context.Context, sessionToken string) (Identity, error)
	// EndSession invalidates a session token.
	EndSession(ctx context.Context, sessionToken string) error
	// CreateIdentity registers a new identity. An already-used identifier
	// returns ErrEmailTaken.
	CreateIdentity(ctx context.Context, identity NewIdentity) (Identity, error)
	// IdentifierExists reports whether a login identifier is already in use.
	IdentifierExists(ctx context.Context, identifier string) (bool, error)
	// InitiatePasswordReset issues a reset token for the identifier.
	// Host-side validation failures are reported as *CodesError.
	InitiatePasswordReset(ctx context.Context, identifier string) (ResetToken, error)
	// ValidateResetToken checks a token pair, returning ErrInvalidResetKey or
	// ErrExpiredResetKey when it cannot be used.
	ValidateResetToken(ctx context.Context, token ResetToken) error
	// CommitNewPassword consumes a valid token and stores the new password.
	CommitNewPassword(ctx context.Context, token ResetToken, password string) error
	// SendNotification delivers a mail through the host platform.
	SendNotification(ctx context.Context, notification Notification) error
}

// CodesError carries host-reported error codes across the identity service
// boundary so flows can attach them to a failure redirect.
type CodesError struct {
	Codes []ErrorCode
}

// NewCodesError builds a CodesError from ordered codes.
func NewCodesError(codes ...ErrorCode) *CodesError {
	return &CodesError{Codes: codes}
}

func (e *CodesError) Error() string {
	return "identity service reported: " + EncodeErrorCodes(e.Codes)
}
