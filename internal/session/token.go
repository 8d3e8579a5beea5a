package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the identity provider's token claims. The subject is the user ID.
type Claims struct {
	AppRole string `json:"app_role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens signed with the provider's shared secret.
type Verifier struct {
	secret []byte
	admins map[string]bool
}

// NewVerifier trusts tokens signed with secret. Users in adminIDs are admins
// regardless of their app_role claim.
func NewVerifier(secret string, adminIDs []string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("empty token secret")
	}
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Verifier{secret: []byte(secret), admins: admins}, nil
}

// Verify parses the token and resolves the caller's session.
func (v *Verifier) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.ExpiresAt == nil {
		return Session{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	role := RoleTenant
	if v.admins[claims.Subject] || claims.AppRole == string(RoleAdmin) {
		role = RoleAdmin
	}
	return Session{UserID: claims.Subject, Role: role}, nil
}

// Issue signs a token for userID, for local development and tests.
func (v *Verifier) Issue(userID string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AppRole: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
