package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/edutrackpro/edutrack/internal/config"
	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/edutrackpro/edutrack/internal/http/middlewares"
	"github.com/edutrackpro/edutrack/internal/observability"
	"github.com/edutrackpro/edutrack/internal/repo/postgres"
	"github.com/edutrackpro/edutrack/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	CreateTeacher(ctx context.Context, u user.User, profile user.TeacherProfile) (user.User, error)
	CreateParent(ctx context.Context, u user.User, profile user.ParentProfile) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email, phone string) (user.User, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type AuthHandler struct {
	users     UserStore
	jwt       *auth.Manager
	revoker   TokenRevoker
	superuser user.Superuser
	prom      *observability.Prom
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, revoker TokenRevoker, superuser user.Superuser, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwt:       jwtManager,
		revoker:   revoker,
		superuser: superuser,
		prom:      prom,
	}
}

func (h *AuthHandler) countAuth(op, result string) {
	if h.prom != nil {
		h.prom.AuthResults.WithLabelValues(op, result).Inc()
	}
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Role            string `json:"role" binding:"required,oneof=teacher parent"`
	Phone           string `json:"phone"`

	// teacher-only
	Subject    string `json:"subject"`
	Department string `json:"department"`

	// parent-only
	Occupation string `json:"occupation"`
	Address    string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=admin teacher parent"`
}

// userView is the identity shape login and register return next to the
// token. The password hash never leaves the server.
type userView struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	Phone string    `json:"phone,omitempty"`
}

func viewOf(u user.User) userView {
	return userView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Phone: u.Phone,
	}
}

// Register creates a teacher or parent account plus its role profile and
// signs the first token. Admin accounts cannot be registered.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role := user.Role(req.Role)

	if !role.Registerable() {
		RespondBadRequest(ctx, "Invalid role", nil)
		return
	}

	switch role {
	case user.RoleTeacher:
		if req.Subject == "" || req.Department == "" {
			RespondBadRequest(ctx, "Subject and department required for teachers", nil)
			return
		}
	case user.RoleParent:
		if req.Occupation == "" || req.Address == "" {
			RespondBadRequest(ctx, "Occupation and address required for parents", nil)
			return
		}
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	newUser := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Phone:        req.Phone,
	}

	var created user.User

	if role == user.RoleTeacher {
		created, err = h.users.CreateTeacher(cctx, newUser, user.TeacherProfile{
			Subject:    req.Subject,
			Department: req.Department,
		})
	} else {
		created, err = h.users.CreateParent(cctx, newUser, user.ParentProfile{
			Occupation: req.Occupation,
			Address:    req.Address,
		})
	}

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			h.countAuth("register", "rejected")
			RespondConflict(ctx, "email_taken", "Email already registered")
			return
		}

		h.countAuth("register", "error")
		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.Issue(created)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	h.countAuth("register", "ok")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    viewOf(created),
		"token":   token,
	})
}

// Login verifies credentials and signs a claim. role=admin short-circuits to
// the configured superuser; everything else goes through the credential
// store.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Role == string(user.RoleAdmin) {
		h.loginSuperuser(ctx, req)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		h.countAuth("login", "rejected")
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	// The role field in the login form is a hint that must agree with the
	// stored role; it never widens access.
	if req.Role != "" && foundUser.Role != user.Role(req.Role) {
		h.countAuth("login", "rejected")
		RespondUnauthorized(ctx, "role_mismatch", "This account is not registered as "+req.Role)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.countAuth("login", "rejected")
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := h.jwt.Issue(foundUser)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	h.countAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    viewOf(foundUser),
		"token":   token,
	})
}

func (h *AuthHandler) loginSuperuser(ctx *gin.Context, req LoginRequest) {
	if !h.superuser.Matches(req.Email, req.Password) {
		h.countAuth("login", "rejected")
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid admin credentials")
		return
	}

	admin := h.superuser.AsUser()

	token, err := h.jwt.Issue(admin)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	h.countAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Admin login successful",
		"user":    viewOf(admin),
		"token":   token,
	})
}

// Logout revokes the presented token for its remaining lifetime. With no
// denylist wired this is a no-op beyond the client discarding the token.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if ok && claims != nil && h.revoker != nil {
		ttl := h.jwt.TTL()

		if claims.ExpiresAt != nil {
			ttl = time.Until(claims.ExpiresAt.Time)
		}

		_ = h.revoker.Revoke(ctx.Request.Context(), claims.ID, ttl)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the caller's current identity from the store, not from the
// claim, so profile edits show up immediately.
func (h *AuthHandler) Me(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok || claims == nil {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	// The superuser has no row to look up.
	if claims.UserID == user.SuperuserID {
		ctx.JSON(http.StatusOK, gin.H{"user": viewOf(h.superuser.AsUser())})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, claims.UserID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": viewOf(u)})
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok || claims == nil {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if claims.UserID == user.SuperuserID {
		RespondNotFound(ctx, "User not found")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.users.UpdateProfile(cctx, claims.UserID, req.Name, req.Email, req.Phone)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailAlreadyUsed):
			RespondConflict(ctx, "email_taken", "Email already taken")
		case errors.Is(err, postgres.ErrUserNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    viewOf(updated),
	})
}
