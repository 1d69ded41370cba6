package auth

import (
	"errors"
	"time"

	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed session payload. It asserts identity, not secrets:
// the token is signed, not encrypted, so nothing confidential belongs here.
type Claims struct {
	UserID int64     `json:"id"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// Manager owns the signing secret and expiry policy. One instance is built
// from config at startup and injected everywhere tokens are touched; nothing
// else reads the secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a claim for the given identity, valid for the configured TTL.
func (m *Manager) Issue(u user.User) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a signed token. Any failure (malformed input,
// signature mismatch, wrong algorithm, expiry) yields a nil claim and an
// error; callers must treat that as unauthenticated, never as an anonymous
// pass-through.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !claims.Role.Valid() {
		return nil, errors.New("unknown role in token")
	}

	return claims, nil
}

// TTL exposes the configured expiry, used when revoking a token: the
// denylist entry only needs to outlive the token itself.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
