// Package remote implements the identity service against the host platform's
// identity HTTP API. The client never follows redirects; the host answers
// with JSON bodies and maps validation failures to error-code lists.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
)

// Client talks to the host platform identity API.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *logger.Logger
}

var _ model.IdentityService = (*Client)(nil)

// NewClient creates a Client for the identity API at endpoint with the given
// per-request timeout.
func NewClient(endpoint string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// errorPayload is the host's uniform failure body. Codes are present on
// validation failures; reason distinguishes token states.
type errorPayload struct {
	Codes  []string `json:"codes"`
	Reason string   `json:"reason"`
}

func (p errorPayload) toCodes() []model.ErrorCode {
	codes := make([]model.ErrorCode, 0, len(p.Codes))
	for _, c := range p.Codes {
		codes = append(codes, model.ErrorCode(c))
	}
	return codes
}

type sessionPayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type identityPayload struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func (p identityPayload) toModel() model.Identity {
	return model.Identity{ID: p.ID, Email: p.Email, Role: model.Role(p.Role)}
}

// Authenticate verifies credentials against POST /sessions.
func (c *Client) Authenticate(ctx context.Context, identifier, password string) (model.Session, error) {
	body := map[string]string{"identifier": identifier, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/sessions", "", body)
	if err != nil {
		return model.Session{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload sessionPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
		}
		return model.Session{Token: payload.Token, ExpiresAt: payload.ExpiresAt}, nil
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return model.Session{}, c.codesError(resp)
	default:
		return model.Session{}, c.unexpectedStatus("authenticate", resp)
	}
}

// CurrentIdentity resolves a session via GET /sessions/current.
func (c *Client) CurrentIdentity(ctx context.Context, sessionToken string) (model.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sessions/current", sessionToken, nil)
	if err != nil {
		return model.Identity{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload identityPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return model.Identity{}, fmt.Errorf("failed to decode identity: %w", err)
		}
		return payload.toModel(), nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return model.Identity{}, model.ErrNoSession
	default:
		return model.Identity{}, c.unexpectedStatus("current identity", resp)
	}
}

// EndSession invalidates a session via DELETE /sessions/current.
func (c *Client) EndSession(ctx context.Context, sessionToken string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/sessions/current", sessionToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return model.ErrNoSession
	default:
		return c.unexpectedStatus("end session", resp)
	}
}

// CreateIdentity registers an identity via POST /identities.
func (c *Client) CreateIdentity(ctx context.Context, identity model.NewIdentity) (model.Identity, error) {
	body := map[string]string{
		"email":      identity.Email,
		"first_name": identity.FirstName,
		"last_name":  identity.LastName,
		"password":   identity.Password,
		"role":       string(identity.Role),
	}

	resp, err := c.do(ctx, http.MethodPost, "/identities", "", body)
	if err != nil {
		return model.Identity{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload identityPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return model.Identity{}, fmt.Errorf("failed to decode identity: %w", err)
		}
		return payload.toModel(), nil
	case http.StatusConflict:
		return model.Identity{}, model.ErrEmailTaken
	case http.StatusUnprocessableEntity:
		return model.Identity{}, c.codesError(resp)
	default:
		return model.Identity{}, c.unexpectedStatus("create identity", resp)
	}
}

// IdentifierExists checks an identifier via GET /identities/exists.
func (c *Client) IdentifierExists(ctx context.Context, identifier string) (bool, error) {
	path := "/identities/exists?identifier=" + url.QueryEscape(identifier)

	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, c.unexpectedStatus("identifier exists", resp)
	}

	var payload struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("failed to decode exists response: %w", err)
	}

	return payload.Exists, nil
}

// InitiatePasswordReset requests a reset token via POST /password-resets.
func (c *Client) InitiatePasswordReset(ctx context.Context, identifier string) (model.ResetToken, error) {
	body := map[string]string{"identifier": identifier}

	resp, err := c.do(ctx, http.MethodPost, "/password-resets", "", body)
	if err != nil {
		return model.ResetToken{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload struct {
			Login string `json:"login"`
			Key   string `json:"key"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return model.ResetToken{}, fmt.Errorf("failed to decode reset token: %w", err)
		}
		return model.ResetToken{Login: payload.Login, Key: payload.Key}, nil
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return model.ResetToken{}, c.codesError(resp)
	default:
		return model.ResetToken{}, c.unexpectedStatus("initiate password reset", resp)
	}
}

// ValidateResetToken checks a token pair via POST /password-resets/validate.
func (c *Client) ValidateResetToken(ctx context.Context, token model.ResetToken) error {
	body := map[string]string{"login": token.Login, "key": token.Key}

	resp, err := c.do(ctx, http.MethodPost, "/password-resets/validate", "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusGone:
		return model.ErrExpiredResetKey
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return model.ErrInvalidResetKey
	default:
		return c.unexpectedStatus("validate reset token", resp)
	}
}

// CommitNewPassword consumes a token via POST /password-resets/commit.
func (c *Client) CommitNewPassword(ctx context.Context, token model.ResetToken, password string) error {
	body := map[string]string{"login": token.Login, "key": token.Key, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/password-resets/commit", "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusGone:
		return model.ErrExpiredResetKey
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return model.ErrInvalidResetKey
	default:
		return c.unexpectedStatus("commit new password", resp)
	}
}

// SendNotification hands a mail to the host via POST /notifications.
func (c *Client) SendNotification(ctx context.Context, notification model.Notification) error {
	body := map[string]string{
		"recipient": notification.Recipient,
		"subject":   notification.Subject,
		"body":      notification.Body,
	}

	resp, err := c.do(ctx, http.MethodPost, "/notifications", "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		return c.unexpectedStatus("send notification", resp)
	}
}

func (c *Client) do(ctx context.Context, method, path, sessionToken string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}

	return resp, nil
}

// codesError decodes the host failure body into a CodesError. A body without
// codes falls back to the generic code so flows still have something to show.
func (c *Client) codesError(resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload.Codes) == 0 {
		return model.NewCodesError(model.CodeUnknown)
	}
	return model.NewCodesError(payload.toCodes()...)
}

func (c *Client) unexpectedStatus(op string, resp *http.Response) error {
	c.logger.Error("Identity client: unexpected status",
		"operation", op,
		"status", resp.StatusCode)
	return fmt.Errorf("identity api %s: unexpected status %d", op, resp.StatusCode)
}
