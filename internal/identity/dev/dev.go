// Package dev implements an in-memory identity service for local
// development. Passwords are bcrypt-hashed, sessions are signed JWTs and
// notifications are written to the log instead of being delivered.
package dev

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/token"
)

const resetKeyTTL = 24 * time.Hour

type account struct {
	identity     model.Identity
	passwordHash []byte
}

type resetEntry struct {
	keyHash   []byte
	expiresAt time.Time
}

// Service is the in-memory identity backend. Safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	accounts map[string]*account
	resets   map[string]resetEntry
	revoked  map[string]struct{}
	tokens   *token.JWT
	logger   *logger.Logger
	now      func() time.Time
}

var _ model.IdentityService = (*Service)(nil)

// NewService creates an empty dev identity service signing sessions with
// secret.
func NewService(secret string, logger *logger.Logger) *Service {
	return &Service{
		accounts: make(map[string]*account),
		resets:   make(map[string]resetEntry),
		revoked:  make(map[string]struct{}),
		tokens:   token.NewJWT(secret),
		logger:   logger,
		now:      time.Now,
	}
}

// Seed creates an account directly, bypassing the registration flow. Meant
// for wiring a known login at startup.
func (s *Service) Seed(email, password string, role model.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[normalize(email)] = &account{
		identity:     model.Identity{ID: uuid.New(), Email: email, Role: role},
		passwordHash: hash,
	}

	return nil
}

// Authenticate verifies credentials and issues a session token.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (model.Session, error) {
	s.mu.RLock()
	acc, ok := s.accounts[normalize(identifier)]
	s.mu.RUnlock()

	if !ok {
		return model.Session{}, model.NewCodesError(model.CodeInvalidUsername)
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return model.Session{}, model.NewCodesError(model.CodeIncorrectPassword)
	}

	tokenString, _, expiresAt, err := s.tokens.GenerateSessionToken(acc.identity.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue session: %w", err)
	}

	return model.Session{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// CurrentIdentity resolves a session token back to its identity.
func (s *Service) CurrentIdentity(ctx context.Context, sessionToken string) (model.Identity, error) {
	identityID, jti, err := s.tokens.ParseSessionToken(sessionToken)
	if err != nil {
		return model.Identity{}, model.ErrNoSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, revoked := s.revoked[jti]; revoked {
		return model.Identity{}, model.ErrNoSession
	}

	for _, acc := range s.accounts {
		if acc.identity.ID == identityID {
			return acc.identity, nil
		}
	}

	return model.Identity{}, model.ErrNoSession
}

// EndSession revokes the session token.
func (s *Service) EndSession(ctx context.Context, sessionToken string) error {
	_, jti, err := s.tokens.ParseSessionToken(sessionToken)
	if err != nil {
		return model.ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, revoked := s.revoked[jti]; revoked {
		return model.ErrNoSession
	}
	s.revoked[jti] = struct{}{}

	return nil
}

// CreateIdentity registers a new account.
func (s *Service) CreateIdentity(ctx context.Context, identity model.NewIdentity) (model.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(identity.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	key := normalize(identity.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accounts[key]; taken {
		return model.Identity{}, model.ErrEmailTaken
	}

	acc := &account{
		identity:     model.Identity{ID: uuid.New(), Email: identity.Email, Role: identity.Role},
		passwordHash: hash,
	}
	s.accounts[key] = acc

	return acc.identity, nil
}

// IdentifierExists reports whether an account uses the identifier.
func (s *Service) IdentifierExists(ctx context.Context, identifier string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[normalize(identifier)]
	return ok, nil
}

// InitiatePasswordReset issues a reset key for the identifier. Only the key
// hash is stored; the plain key rides in the mail link.
func (s *Service) InitiatePasswordReset(ctx context.Context, identifier string) (model.ResetToken, error) {
	if strings.TrimSpace(identifier) == "" {
		return model.ResetToken{}, model.NewCodesError(model.CodeEmptyUsername)
	}

	key := normalize(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[key]; !ok {
		return model.ResetToken{}, model.NewCodesError(model.CodeInvalidCombo)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return model.ResetToken{}, fmt.Errorf("failed to draw reset key: %w", err)
	}
	plainKey := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return model.ResetToken{}, fmt.Errorf("failed to hash reset key: %w", err)
	}

	s.resets[key] = resetEntry{keyHash: hash, expiresAt: s.now().Add(resetKeyTTL)}

	return model.ResetToken{Login: identifier, Key: plainKey}, nil
}

// ValidateResetToken checks a token pair without consuming it.
func (s *Service) ValidateResetToken(ctx context.Context, tok model.ResetToken) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.checkResetLocked(tok)
}

// CommitNewPassword consumes a valid token and stores the new password.
func (s *Service) CommitNewPassword(ctx context.Context, tok model.ResetToken, password string) error {
	key := normalize(tok.Login)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkResetLocked(tok); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.accounts[key].passwordHash = hash
	delete(s.resets, key)

	return nil
}

// SendNotification logs the mail instead of delivering it.
func (s *Service) SendNotification(ctx context.Context, notification model.Notification) error {
	s.logger.Info("Dev identity: notification",
		"recipient", notification.Recipient,
		"subject", notification.Subject,
		"body", notification.Body)
	return nil
}

func (s *Service) checkResetLocked(tok model.ResetToken) error {
	entry, ok := s.resets[normalize(tok.Login)]
	if !ok {
		return model.ErrInvalidResetKey
	}
	if s.now().After(entry.expiresAt) {
		return model.ErrExpiredResetKey
	}
	if err := bcrypt.CompareHashAndPassword(entry.keyHash, []byte(tok.Key)); err != nil {
		return model.ErrInvalidResetKey
	}
	return nil
}

func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
