package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"insurance_backend/internal/shared/access"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens.
// Refresh tokens additionally set the registered "jti" claim to the session id.
type Claims struct {
	Email string      `json:"email"`
	Role  access.Role `json:"role"`
	jwt.RegisteredClaims
}

// Generator signs and verifies the access/refresh token pair.
type Generator struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewGenerator creates a Generator. Access and refresh tokens use separate secrets so one
// can never be replayed as the other.
func NewGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// GenerateAccessToken creates a signed short-lived access token.
func (g *Generator) GenerateAccessToken(userID, email string, role access.Role) (string, error) {
	now := g.now()
	return g.sign(g.accessSecret, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.accessTTL)),
		},
	})
}

// GenerateRefreshToken creates a signed refresh token bound to sessionID and returns its expiry.
func (g *Generator) GenerateRefreshToken(userID, email string, role access.Role, sessionID string) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.refreshTTL)
	token, err := g.sign(g.refreshSecret, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (g *Generator) ParseAccessToken(token string) (*Claims, error) {
	return g.parse(token, g.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its subject and session id.
func (g *Generator) ParseRefreshToken(token string) (string, string, error) {
	claims, err := g.parse(token, g.refreshSecret)
	if err != nil {
		return "", "", err
	}
	if claims.ID == "" {
		return "", "", fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims.Subject, claims.ID, nil
}

func (g *Generator) sign(secret []byte, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (g *Generator) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// only HMAC is accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
