// Package security issues and checks the tokens used for the admin endpoints
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var (
	ErrNoSecret  = errors.New("no jwt secret provided")
	ErrNoSubject = errors.New("no token subject provided")
	ErrNotAdmin  = errors.New("token does not carry the admin role")
	ErrBadExpiry = errors.New("token ttl must be bigger than 0")
	ErrBadToken  = errors.New("token invalid")
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 token with role=admin that expires after ttl
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}

	if subject == "" {
		return "", ErrNoSubject
	}

	if ttl <= 0 {
		return "", ErrBadExpiry
	}

	now := time.Now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAdminToken verifies the signature, the expiry and the role of a token
func ParseAdminToken(secret, tokenStr string) (*AdminClaims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	var claims AdminClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrBadToken, err)
	}

	if !token.Valid {
		return nil, ErrBadToken
	}

	if claims.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}

	return &claims, nil
}
