// Package admin issues and validates the bearer tokens that gate the API.
package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
	ErrUnknownRole   = errors.New("unknown role")
)

// Role is the access level carried by a token.
type Role string

const (
	// RoleAdmin may mutate the directory, faces and alert thresholds.
	RoleAdmin Role = "admin"
	// RoleOperator may check employees in and read.
	RoleOperator Role = "operator"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleOperator:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Allows reports whether r satisfies the required role. Admin satisfies every role.
func (r Role) Allows(required Role) bool {
	return r == RoleAdmin || r == required
}

// Claims is the payload of a rollcall token; the subject names the user.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 tokens for one issuer.
type JWTService struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	return &JWTService{key: []byte(secret), issuer: issuer, ttl: ttl}
}

// GenerateToken signs a token for subject with the given role.
func (s *JWTService) GenerateToken(subject string, role Role) (string, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}
	return s.sign(subject, role, time.Now())
}

func (s *JWTService) sign(subject string, role Role, at time.Time) (string, error) {
	registered := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(at),
		NotBefore: jwt.NewNumericDate(at),
		ExpiresAt: jwt.NewNumericDate(at.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: role, RegisteredClaims: registered}).SignedString(s.key)
}

func (s *JWTService) keyFor(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return s.key, nil
}

// ValidateToken parses raw and checks signature, issuer, expiry and role.
func (s *JWTService) ValidateToken(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, s.keyFor, jwt.WithIssuer(s.issuer))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	}
	if _, err := ParseRole(string(claims.Role)); err != nil {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return &claims, nil
}

// RefreshToken reissues a still-valid token with a fresh expiry.
func (s *JWTService) RefreshToken(raw string) (string, error) {
	claims, err := s.ValidateToken(raw)
	if err != nil {
		return "", err
	}
	return s.sign(claims.Subject, claims.Role, time.Now())
}
