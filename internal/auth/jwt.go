// Package auth issues and verifies the bearer tokens hosts present to the
// command API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// ScopeCommands is the only scope the command API accepts.
const ScopeCommands = "commands"

// JWTManager signs and validates HS256 host tokens.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters; config validation enforces it.
func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type hostClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// Issue creates a signed token for the host identified by hostID.
func (m *JWTManager) Issue(hostID uuid.UUID) (string, error) {
	now := m.now()
	claims := hostClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   hostID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scope: ScopeCommands,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and returns the host id it was issued to.
// Every failure unwraps to domain.ErrUnauthorized.
func (m *JWTManager) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	var claims hostClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", errors.Join(domain.ErrUnauthorized, err))
	}

	if claims.Scope != ScopeCommands {
		return uuid.Nil, fmt.Errorf("scope %q: %w", claims.Scope, domain.ErrUnauthorized)
	}

	hostID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", domain.ErrUnauthorized)
	}
	return hostID, nil
}
