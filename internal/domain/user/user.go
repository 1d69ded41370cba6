package user

import "time"

// Role is the closed set of identities the API knows about. Authorization
// decisions compare against these constants, never against request input.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent:
		return true
	}
	return false
}

// Registerable reports whether self-service registration may create an
// account with this role. Admin accounts are never registered.
func (r Role) Registerable() bool {
	return r == RoleTeacher || r == RoleParent
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TeacherProfile and ParentProfile are the role-specific rows attached to a
// user at registration.
type TeacherProfile struct {
	UserID     int64  `json:"userId"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
}

type ParentProfile struct {
	UserID     int64  `json:"userId"`
	Occupation string `json:"occupation"`
	Address    string `json:"address"`
}

// Superuser is the fixed admin identity. It lives in configuration, not in
// the users table, and logs in by direct credential comparison. Its claim id
// is always 0 so it can never collide with a stored user.
type Superuser struct {
	Email    string
	Password string
}

const SuperuserID int64 = 0

// Matches compares presented credentials against the configured constants.
// The password is a plain configured value, not a bcrypt hash; this is the
// deliberate carve-out inherited from the product, not a pattern to copy.
func (s Superuser) Matches(email, password string) bool {
	return s.Email != "" && email == s.Email && password == s.Password
}

// AsUser renders the superuser in the same shape as a stored identity for
// token issuance and login responses.
func (s Superuser) AsUser() User {
	return User{
		ID:    SuperuserID,
		Name:  "Admin",
		Email: s.Email,
		Role:  RoleAdmin,
	}
}
