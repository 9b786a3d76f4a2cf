package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents session JWT claims with the identity ID.
type Claims struct {
	jwt.RegisteredClaims
	IdentityID uuid.UUID `json:"identity_id"`
	TokenType  string    `json:"typ"`
}

// JWT issues and parses session tokens backed by symmetric HMAC.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT session token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey}
}

const (
	sessionTTL  = 48 * time.Hour
	typeSession = "session"
)

// GenerateSessionToken creates a session token for the identity, returning
// the token, its JTI and its expiry.
func (j *JWT) GenerateSessionToken(identityID uuid.UUID) (string, string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(sessionTTL)
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		IdentityID: identityID,
		TokenType:  typeSession,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, jti, expiresAt, nil
}

// ParseSessionToken validates a session token and extracts the identity ID
// and JTI.
func (j *JWT) ParseSessionToken(tokenString string) (uuid.UUID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("session token is invalid")
	}
	if claims.TokenType != typeSession {
		return uuid.Nil, "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.IdentityID, claims.ID, nil
}
