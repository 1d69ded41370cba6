package postgres

import (
	"context"
	"errors"

	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(phone, ''), status, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

// CreateTeacher inserts the user row and its teacher profile in one
// transaction so a half-registered account can never exist.
func (r *UsersRepo) CreateTeacher(ctx context.Context, u user.User, profile user.TeacherProfile) (user.User, error) {
	return r.createWithProfile(ctx, u, func(ctx context.Context, tx pgx.Tx, userID int64) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO teacher_profiles (user_id, subject, department) VALUES ($1, $2, $3)`,
			userID, profile.Subject, profile.Department,
		)
		return err
	})
}

// CreateParent inserts the user row and its parent profile in one
// transaction.
func (r *UsersRepo) CreateParent(ctx context.Context, u user.User, profile user.ParentProfile) (user.User, error) {
	return r.createWithProfile(ctx, u, func(ctx context.Context, tx pgx.Tx, userID int64) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO parent_profiles (user_id, occupation, address) VALUES ($1, $2, $3)`,
			userID, profile.Occupation, profile.Address,
		)
		return err
	})
}

func (r *UsersRepo) createWithProfile(ctx context.Context, u user.User, insertProfile func(context.Context, pgx.Tx, int64) error) (user.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return user.User{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone, status)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'active')
		 RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Phone,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	err = insertProfile(ctx, tx, u.ID)

	if err != nil {
		return user.User{}, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// UpdateProfile changes the caller-editable identity fields. Role is
// immutable after creation; there is no path that touches it.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id int64, name, email, phone string) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $2,
		     email = $3,
		     phone = NULLIF($4, ''),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, name, email, phone,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

// ListTeachers joins the teacher profile rows onto their users for the
// teacher directory endpoints.
func (r *UsersRepo) ListTeachers(ctx context.Context) ([]TeacherRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, COALESCE(u.phone, ''), COALESCE(t.subject, ''), COALESCE(t.department, '')
		 FROM users u
		 JOIN teacher_profiles t ON t.user_id = u.id
		 ORDER BY u.id`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []TeacherRow

	for rows.Next() {
		var t TeacherRow

		err = rows.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Subject, &t.Department)

		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *UsersRepo) GetTeacher(ctx context.Context, id int64) (TeacherRow, error) {
	var t TeacherRow

	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, COALESCE(u.phone, ''), COALESCE(t.subject, ''), COALESCE(t.department, '')
		 FROM users u
		 JOIN teacher_profiles t ON t.user_id = u.id
		 WHERE u.id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Subject, &t.Department)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TeacherRow{}, ErrUserNotFound
		}

		return TeacherRow{}, err
	}

	return t, nil
}

// DeleteTeacher removes the user row; the profile goes with it via cascade.
func (r *UsersRepo) DeleteTeacher(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1 AND role = 'teacher'`,
		id,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// TeacherRow is the joined user+profile shape served by the teacher
// directory.
type TeacherRow struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
