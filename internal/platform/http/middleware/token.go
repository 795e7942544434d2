package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

var ErrNoSecret = errors.New("no jwt secret configured")

// Claims carry the reporter identity. Role is a domain.ReporterRole.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// NewToken signs a reporter token with HS256.
func NewToken(secret []byte, sub string, role domain.ReporterRole, expiry time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown reporter role %q", role)
	}
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role: string(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken checks signature and expiry. Missing roles default to citizen and
// missing subjects to anonymous.
func ValidateToken(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Role == "" {
		claims.Role = string(domain.RoleCitizen)
	}
	if !domain.ReporterRole(claims.Role).Valid() {
		return nil, fmt.Errorf("unknown reporter role %q", claims.Role)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		claims.Subject = anonymousID
	}
	return claims, nil
}
