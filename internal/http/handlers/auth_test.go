package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/edutrackpro/edutrack/internal/http/handlers"
	"github.com/edutrackpro/edutrack/internal/http/middlewares"
	"github.com/edutrackpro/edutrack/internal/repo/postgres"
	"github.com/edutrackpro/edutrack/internal/security"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.UserStore interface

type fakeUserStore struct {
	getByEmailFn    func(ctx context.Context, email string) (user.User, error)
	getByIDFn       func(ctx context.Context, id int64) (user.User, error)
	createTeacherFn func(ctx context.Context, u user.User, p user.TeacherProfile) (user.User, error)
	createParentFn  func(ctx context.Context, u user.User, p user.ParentProfile) (user.User, error)
	updateProfileFn func(ctx context.Context, id int64, name, email, phone string) (user.User, error)
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUserStore) CreateTeacher(ctx context.Context, u user.User, p user.TeacherProfile) (user.User, error) {
	if f.createTeacherFn != nil {
		return f.createTeacherFn(ctx, u, p)
	}
	u.ID = 1
	u.Role = user.RoleTeacher
	return u, nil
}

func (f *fakeUserStore) CreateParent(ctx context.Context, u user.User, p user.ParentProfile) (user.User, error) {
	if f.createParentFn != nil {
		return f.createParentFn(ctx, u, p)
	}
	u.ID = 2
	u.Role = user.RoleParent
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id int64, name, email, phone string) (user.User, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, name, email, phone)
	}
	return user.User{ID: id, Name: name, Email: email, Phone: phone, Role: user.RoleParent}, nil
}

type fakeRevoker struct {
	revokedJTI string
	revokedTTL time.Duration
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	f.revokedJTI = jti
	f.revokedTTL = ttl
	return nil
}

var testSuperuser = user.Superuser{
	Email:    "admin@school.com",
	Password: "admin123",
}

func newAuthHandler(store *fakeUserStore, revoker handlers.TokenRevoker) (*handlers.AuthHandler, *auth.Manager) {
	m := auth.NewManager("test-secret", time.Hour)
	return handlers.NewAuthHandler(store, m, revoker, testSuperuser, nil), m
}

func postJSON(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
	}{
		{
			name: "teacher_success",
			body: `{
				"name": "John Smith",
				"email": "john@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "teacher",
				"subject": "Mathematics",
				"department": "Science"
			}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "parent_success",
			body: `{
				"name": "Sarah Johnson",
				"email": "sarah@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "parent",
				"occupation": "Engineer",
				"address": "12 Elm Street"
			}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "password_mismatch",
			body: `{
				"name": "John Smith",
				"email": "john@example.com",
				"password": "password123",
				"confirmPassword": "different123",
				"role": "teacher",
				"subject": "Mathematics",
				"department": "Science"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "admin_role_rejected",
			body: `{
				"name": "Mallory",
				"email": "mallory@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "admin"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "teacher_missing_subject",
			body: `{
				"name": "John Smith",
				"email": "john@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "teacher",
				"department": "Science"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "parent_missing_address",
			body: `{
				"name": "Sarah Johnson",
				"email": "sarah@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "parent",
				"occupation": "Engineer"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "email_taken",
			body: `{
				"name": "John Smith",
				"email": "john@example.com",
				"password": "password123",
				"confirmPassword": "password123",
				"role": "teacher",
				"subject": "Mathematics",
				"department": "Science"
			}`,
			storeSetup: func(f *fakeUserStore) {
				f.createTeacherFn = func(ctx context.Context, u user.User, p user.TeacherProfile) (user.User, error) {
					return user.User{}, postgres.ErrEmailAlreadyUsed
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "short_password",
			body:           `{"name":"x","email":"x@example.com","password":"short","confirmPassword":"short","role":"parent","occupation":"a","address":"b"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}
			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h, _ := newAuthHandler(store, nil)

			r := gin.New()
			r.POST("/auth/register", h.Register)

			w := postJSON(r, "/auth/register", tt.body, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var resp struct {
					Token string `json:"token"`
					User  struct {
						ID   int64  `json:"id"`
						Role string `json:"role"`
					} `json:"user"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Token == "" {
					t.Fatalf("expected a token in the response")
				}
				if resp.User.ID == 0 {
					t.Fatalf("expected a stored user id")
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("parent123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	stored := user.User{
		ID:           2,
		Name:         "Sarah Johnson",
		Email:        "parent@example.com",
		PasswordHash: hash,
		Role:         user.RoleParent,
	}

	store := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantRole       string
	}{
		{
			name:           "success",
			body:           `{"email":"parent@example.com","password":"parent123"}`,
			wantStatusCode: http.StatusOK,
			wantRole:       "parent",
		},
		{
			name:           "success_with_matching_role",
			body:           `{"email":"parent@example.com","password":"parent123","role":"parent"}`,
			wantStatusCode: http.StatusOK,
			wantRole:       "parent",
		},
		{
			name:           "wrong_password",
			body:           `{"email":"parent@example.com","password":"nope-nope"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown_email",
			body:           `{"email":"ghost@example.com","password":"parent123"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "role_mismatch",
			body:           `{"email":"parent@example.com","password":"parent123","role":"teacher"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "admin_success",
			body:           `{"email":"admin@school.com","password":"admin123","role":"admin"}`,
			wantStatusCode: http.StatusOK,
			wantRole:       "admin",
		},
		{
			name:           "admin_wrong_password",
			body:           `{"email":"admin@school.com","password":"wrong-pass","role":"admin"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid_payload",
			body:           `{"email":"not-an-email","password":""}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthHandler(store, nil)

			r := gin.New()
			r.POST("/auth/login", h.Login)

			w := postJSON(r, "/auth/login", tt.body, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
					User  struct {
						Role string `json:"role"`
					} `json:"user"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Token == "" {
					t.Fatalf("expected a token in the response")
				}
				if resp.User.Role != tt.wantRole {
					t.Fatalf("got role %q, want %q", resp.User.Role, tt.wantRole)
				}
			}
		})
	}
}

func TestLogoutHandler_RevokesToken(t *testing.T) {
	store := &fakeUserStore{}
	revoker := &fakeRevoker{}

	h, m := newAuthHandler(store, revoker)

	token, err := m.Issue(user.User{ID: 2, Email: "parent@example.com", Role: user.RoleParent})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	gate := middlewares.NewAuthMiddleware(m, nil)

	r := gin.New()
	r.POST("/auth/logout", gate.RequireAuth(), h.Logout)

	w := postJSON(r, "/auth/logout", `{}`, token)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if revoker.revokedJTI == "" {
		t.Fatalf("expected the token id to be revoked")
	}
	if revoker.revokedTTL <= 0 || revoker.revokedTTL > time.Hour {
		t.Fatalf("revocation ttl %v should match the remaining token lifetime", revoker.revokedTTL)
	}
}

func TestMeHandler(t *testing.T) {
	stored := user.User{ID: 2, Name: "Sarah Johnson", Email: "parent@example.com", Role: user.RoleParent}

	tests := []struct {
		name           string
		identity       user.User
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
		wantName       string
	}{
		{
			name:     "stored_user",
			identity: stored,
			storeSetup: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id int64) (user.User, error) {
					if id == stored.ID {
						return stored, nil
					}
					return user.User{}, postgres.ErrUserNotFound
				}
			},
			wantStatusCode: http.StatusOK,
			wantName:       "Sarah Johnson",
		},
		{
			name:           "superuser_has_no_row",
			identity:       testSuperuser.AsUser(),
			wantStatusCode: http.StatusOK,
			wantName:       "Admin",
		},
		{
			name:     "deleted_user",
			identity: user.User{ID: 99, Email: "gone@example.com", Role: user.RoleParent},
			storeSetup: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id int64) (user.User, error) {
					return user.User{}, postgres.ErrUserNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}
			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h, m := newAuthHandler(store, nil)

			token, err := m.Issue(tt.identity)
			if err != nil {
				t.Fatalf("Issue error: %v", err)
			}

			gate := middlewares.NewAuthMiddleware(m, nil)

			r := gin.New()
			r.GET("/auth/me", gate.RequireAuth(), h.Me)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					User struct {
						Name string `json:"name"`
					} `json:"user"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.User.Name != tt.wantName {
					t.Fatalf("got name %q, want %q", resp.User.Name, tt.wantName)
				}
			}
		})
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	tests := []struct {
		name           string
		identity       user.User
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
	}{
		{
			name:           "success",
			identity:       user.User{ID: 2, Email: "parent@example.com", Role: user.RoleParent},
			body:           `{"name":"Sarah J.","email":"sarah.j@example.com","phone":"555-0101"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "superuser_cannot_edit",
			identity:       testSuperuser.AsUser(),
			body:           `{"name":"Admin","email":"admin@school.com"}`,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_email",
			identity:       user.User{ID: 2, Email: "parent@example.com", Role: user.RoleParent},
			body:           `{"name":"Sarah","email":"not-an-email"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:     "email_taken",
			identity: user.User{ID: 2, Email: "parent@example.com", Role: user.RoleParent},
			body:     `{"name":"Sarah","email":"other@example.com"}`,
			storeSetup: func(f *fakeUserStore) {
				f.updateProfileFn = func(ctx context.Context, id int64, name, email, phone string) (user.User, error) {
					return user.User{}, postgres.ErrEmailAlreadyUsed
				}
			},
			wantStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}
			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h, m := newAuthHandler(store, nil)

			token, err := m.Issue(tt.identity)
			if err != nil {
				t.Fatalf("Issue error: %v", err)
			}

			gate := middlewares.NewAuthMiddleware(m, nil)

			r := gin.New()
			r.PUT("/auth/profile", gate.RequireAuth(), h.UpdateProfile)

			req := httptest.NewRequest(http.MethodPut, "/auth/profile", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
