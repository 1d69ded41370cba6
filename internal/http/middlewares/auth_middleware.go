package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/gin-gonic/gin"
)

// TokenVerifier is kept small so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoked RevocationChecker
}

// NewAuthMiddleware builds the gate. revoked may be nil when no denylist is
// configured.
func NewAuthMiddleware(jwt TokenVerifier, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, revoked: revoked}
}

const ctxClaimsKey = "auth.claims"

// RequireAuth moves a request from unauthenticated to authenticated or
// terminates it. Nothing downstream runs on a failed transition.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid token")
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil || claims == nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if m.revoked != nil && m.revoked.IsRevoked(c.Request.Context(), claims.ID) {
			abortUnauthorized(c, "Token has been revoked")
			return
		}

		// Claim context is read-only for downstream handlers.
		c.Set(ctxClaimsKey, claims)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// ClaimsFromContext returns the verified claim stashed by RequireAuth, so
// handlers never re-parse the token.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*auth.Claims)
	return claims, ok
}
