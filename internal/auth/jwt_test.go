package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/edutrackpro/edutrack/internal/domain/user"
)

// noneAlgToken hand-crafts an unsigned token claiming alg "none".
func noneAlgToken(t *testing.T) string {
	t.Helper()

	enc := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}

	header := enc(map[string]string{"alg": "none", "typ": "JWT"})
	payload := enc(map[string]any{"id": 1, "email": "t@example.com", "role": "teacher"})

	return header + "." + payload + "."
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(user.User{
		ID:    42,
		Name:  "Sarah Johnson",
		Email: "parent@example.com",
		Role:  user.RoleParent,
	})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("got user id %d, want 42", claims.UserID)
	}
	if claims.Email != "parent@example.com" {
		t.Fatalf("got email %q", claims.Email)
	}
	if claims.Role != user.RoleParent {
		t.Fatalf("got role %q, want parent", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id (jti) to be set")
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("expected a future expiry, got %v", claims.ExpiresAt)
	}
}

func TestVerify_Failures(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	validToken, err := m.Issue(user.User{ID: 1, Email: "t@example.com", Role: user.RoleTeacher})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := NewManager("another-secret", time.Hour)

	otherToken, err := other.Issue(user.User{ID: 1, Email: "t@example.com", Role: user.RoleTeacher})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	expired := NewManager("test-secret", -time.Minute)

	expiredToken, err := expired.Issue(user.User{ID: 1, Email: "t@example.com", Role: user.RoleTeacher})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	badRole := NewManager("test-secret", time.Hour)

	badRoleToken, err := badRole.Issue(user.User{ID: 1, Email: "t@example.com", Role: "superadmin"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "wrong_secret", token: otherToken},
		{name: "expired", token: expiredToken},
		{name: "tampered_payload", token: validToken[:len(validToken)-4] + "AAAA"},
		{name: "unsigned_alg_none", token: noneAlgToken(t)},
		{name: "unknown_role", token: badRoleToken},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.Verify(tt.token)

			if err == nil {
				t.Fatalf("expected an error")
			}
			if claims != nil {
				t.Fatalf("expected nil claims on failure, got %+v", claims)
			}
		})
	}
}
