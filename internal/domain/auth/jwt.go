// Package auth validates the bearer tokens that gate posting endpoints.
// Token issuance lives in the identity service; this side only verifies.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ledgerpost/internal/core/apperror"
	appctx "ledgerpost/internal/core/context"
)

// Claims is the JWT payload carried by authenticated requests.
type Claims struct {
	UserID      string   `json:"uid"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"perms,omitempty"`
	IsAdmin     bool     `json:"admin,omitempty"`
	SessionID   string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// JWTService verifies and (for tests and tooling) issues tokens.
type JWTService struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// NewJWTService creates a token service.
func NewJWTService(secret, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		secret:   []byte(secret),
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}
}

// GenerateToken issues a signed token for the user context.
func (s *JWTService) GenerateToken(user appctx.UserContext) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      user.UserID,
		Email:       user.Email,
		Roles:       user.Roles,
		Permissions: user.Permissions,
		IsAdmin:     user.IsAdmin,
		SessionID:   user.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}
	return claims, nil
}

// UserContext converts claims to the request user context.
func (c *Claims) UserContext() appctx.UserContext {
	return appctx.UserContext{
		UserID:      c.UserID,
		Email:       c.Email,
		Roles:       c.Roles,
		Permissions: c.Permissions,
		IsAdmin:     c.IsAdmin,
		SessionID:   c.SessionID,
	}
}
