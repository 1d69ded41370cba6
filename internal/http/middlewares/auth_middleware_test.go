package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/edutrackpro/edutrack/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) Verify(token string) (*auth.Claims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}

	return nil, errors.New("no verifier configured")
}

type fakeRevocations struct {
	revokedJTI string
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, jti string) bool {
	return jti == f.revokedJTI
}

func claimsFor(id int64, role user.Role) *auth.Claims {
	return &auth.Claims{
		UserID: id,
		Email:  "someone@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: "jti-1",
		},
	}
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		verifyFn       func(token string) (*auth.Claims, error)
		revokedJTI     string
		wantStatusCode int
	}{
		{
			name:           "missing_header",
			header:         "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic abc123",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "bearer_without_token",
			header:         "Bearer ",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "invalid_token",
			header: "Bearer garbage",
			verifyFn: func(token string) (*auth.Claims, error) {
				return nil, errors.New("bad signature")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "revoked_token",
			header: "Bearer valid",
			verifyFn: func(token string) (*auth.Claims, error) {
				return claimsFor(7, user.RoleParent), nil
			},
			revokedJTI:     "jti-1",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "valid_token",
			header: "Bearer valid",
			verifyFn: func(token string) (*auth.Claims, error) {
				if token != "valid" {
					return nil, errors.New("unexpected token " + token)
				}
				return claimsFor(7, user.RoleParent), nil
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(
				&fakeVerifier{verifyFn: tt.verifyFn},
				&fakeRevocations{revokedJTI: tt.revokedJTI},
			)

			r := gin.New()
			r.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
				claims, ok := middlewares.ClaimsFromContext(c)
				if !ok || claims == nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
					return
				}
				okHandler(c)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		role           user.Role
		allowed        []user.Role
		wantStatusCode int
	}{
		{
			name:           "parent_on_parent_route",
			role:           user.RoleParent,
			allowed:        []user.Role{user.RoleParent, user.RoleAdmin},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "teacher_on_parent_route",
			role:           user.RoleTeacher,
			allowed:        []user.Role{user.RoleParent, user.RoleAdmin},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_on_staff_route",
			role:           user.RoleAdmin,
			allowed:        []user.Role{user.RoleAdmin, user.RoleTeacher},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "parent_on_staff_route",
			role:           user.RoleParent,
			allowed:        []user.Role{user.RoleAdmin, user.RoleTeacher},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(&fakeVerifier{
				verifyFn: func(token string) (*auth.Claims, error) {
					return claimsFor(7, tt.role), nil
				},
			}, nil)

			r := gin.New()
			r.GET("/gated", m.RequireAuth(), m.RequireRole(tt.allowed...), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/gated", nil)
			req.Header.Set("Authorization", "Bearer token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeVerifier{}, nil)

	r := gin.New()
	// RequireRole mounted without RequireAuth must refuse, not panic
	r.GET("/gated", m.RequireRole(user.RoleAdmin), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}
}

func TestRequireParentParam(t *testing.T) {
	tests := []struct {
		name           string
		role           user.Role
		userID         int64
		url            string
		wantStatusCode int
	}{
		{
			name:           "own_subtree",
			role:           user.RoleParent,
			userID:         7,
			url:            "/parents/7/dashboard",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "another_parent",
			role:           user.RoleParent,
			userID:         7,
			url:            "/parents/8/dashboard",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "non_numeric_param",
			role:           user.RoleParent,
			userID:         7,
			url:            "/parents/abc/dashboard",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_any_parent",
			role:           user.RoleAdmin,
			userID:         0,
			url:            "/parents/7/dashboard",
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(&fakeVerifier{
				verifyFn: func(token string) (*auth.Claims, error) {
					return claimsFor(tt.userID, tt.role), nil
				},
			}, nil)

			r := gin.New()
			r.GET("/parents/:parentId/dashboard",
				m.RequireAuth(),
				m.RequireRole(user.RoleParent, user.RoleAdmin),
				m.RequireParentParam(),
				okHandler,
			)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Authorization", "Bearer token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
