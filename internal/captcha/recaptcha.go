// Package captcha verifies reCAPTCHA responses against the Google
// siteverify endpoint. Verification fails closed: any transport or decode
// problem counts as a failed challenge.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
)

// Verifier checks challenge responses against the siteverify endpoint.
type Verifier struct {
	verifyURL string
	client    *http.Client
	logger    *logger.Logger
}

var _ model.CaptchaVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier posting to verifyURL with the given
// per-request timeout.
func NewVerifier(verifyURL string, timeout time.Duration, logger *logger.Logger) *Verifier {
	return &Verifier{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether the challenge response passes. An unconfigured
// secret disables the check and always passes; everything else that goes
// wrong fails the challenge.
func (v *Verifier) Verify(ctx context.Context, secret, response string) bool {
	if secret == "" {
		return true
	}
	if response == "" {
		return false
	}

	form := url.Values{
		"secret":   {secret},
		"response": {response},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error("Captcha verifier: failed to build request",
			"error", err.Error())
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("Captcha verifier: request failed",
			"error", err.Error())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Error("Captcha verifier: unexpected status",
			"status", resp.StatusCode)
		return false
	}

	var decoded siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		v.logger.Error("Captcha verifier: failed to decode response",
			"error", err.Error())
		return false
	}

	if !decoded.Success {
		v.logger.Info("Captcha verifier: challenge rejected",
			"codes", strings.Join(decoded.ErrorCodes, ","))
	}

	return decoded.Success
}
