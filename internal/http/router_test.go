package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/edutrackpro/edutrack/internal/config"
	"github.com/edutrackpro/edutrack/internal/domain/user"
	apphttp "github.com/edutrackpro/edutrack/internal/http"
	"github.com/gin-gonic/gin"
)

const testSecret = "router-test-secret"

func testConfig() config.Config {
	return config.Config{
		Env:           "dev",
		Port:          0,
		JWTSecret:     testSecret,
		JWTTTLHours:   1,
		AdminEmail:    "admin@school.com",
		AdminPassword: "admin123",
	}
}

// testRouter wires the full middleware chain with no database behind it.
// Only routes that are rejected before any repository call may be exercised.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return apphttp.NewRouter(logger, nil, nil, testConfig())
}

func tokenFor(t *testing.T, role user.Role, id int64) string {
	t.Helper()

	m := auth.NewManager(testSecret, time.Hour)

	token, err := m.Issue(user.User{ID: id, Email: "someone@example.com", Role: role})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	return token
}

func doGet(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	router := testRouter(t)

	if w := doGet(router, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz got %d, body=%s", w.Code, w.Body.String())
	}
	if w := doGet(router, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz got %d, body=%s", w.Code, w.Body.String())
	}
	if w := doGet(router, "/metrics", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics got %d", w.Code)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := testRouter(t)

	w := doGet(router, "/healthz", "")

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("got X-Content-Type-Options %q", got)
	}
	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestRouter_AuthGates(t *testing.T) {
	router := testRouter(t)

	parentToken := tokenFor(t, user.RoleParent, 7)
	teacherToken := tokenFor(t, user.RoleTeacher, 3)

	tests := []struct {
		name           string
		path           string
		token          string
		wantStatusCode int
	}{
		{
			name:           "students_requires_auth",
			path:           "/students",
			token:          "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "students_rejects_parents",
			path:           "/students",
			token:          parentToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "stats_rejects_parents",
			path:           "/dashboard/stats",
			token:          parentToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "parent_routes_require_auth",
			path:           "/parents/7/dashboard",
			token:          "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "parent_routes_reject_teachers",
			path:           "/parents/7/dashboard",
			token:          teacherToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "parent_cannot_cross_subtrees",
			path:           "/parents/8/dashboard",
			token:          parentToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "teachers_requires_admin",
			path:           "/teachers",
			token:          teacherToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "garbage_token",
			path:           "/students",
			token:          "garbage",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doGet(router, tt.path, tt.token)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRouter_RequireJSONOnWrites(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	// no Content-Type header

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415, body=%s", w.Code, w.Body.String())
	}
}
