package db

import (
	"context"

	"github.com/edutrackpro/edutrack/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDemo loads a small demo data set for local development: one teacher,
// one parent with two children, a score history, and a few alerts. It is a
// no-op when any user already exists.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	teacherHash, err := security.HashPassword("teacher123")

	if err != nil {
		return err
	}

	parentHash, err := security.HashPassword("parent123")

	if err != nil {
		return err
	}

	var teacherID int64

	err = pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone, status)
		 VALUES ($1, $2, $3, 'teacher', $4, 'active')
		 RETURNING id`,
		"John Smith", "teacher@example.com", teacherHash, "123-456-7890",
	).Scan(&teacherID)

	if err != nil {
		return err
	}

	var parentID int64

	err = pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone, status)
		 VALUES ($1, $2, $3, 'parent', $4, 'active')
		 RETURNING id`,
		"Sarah Johnson", "parent@example.com", parentHash, "098-765-4321",
	).Scan(&parentID)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO teacher_profiles (user_id, subject, department) VALUES ($1, $2, $3)`,
		teacherID, "Mathematics", "Science",
	)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO parent_profiles (user_id, occupation, address) VALUES ($1, $2, $3)`,
		parentID, "Engineer", "123 Main Street, City, State 12345",
	)

	if err != nil {
		return err
	}

	var aliceID, bobID int64

	err = pool.QueryRow(ctx,
		`INSERT INTO students (name, email, roll_number, class, parent_id, teacher_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		"Alice Smith", "alice@example.com", "S001", "10A", parentID, teacherID,
	).Scan(&aliceID)

	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO students (name, email, roll_number, class, parent_id, teacher_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		"Bob Wilson", "bob@example.com", "S002", "10B", parentID, teacherID,
	).Scan(&bobID)

	if err != nil {
		return err
	}

	scores := []struct {
		student int64
		score   int
		year    int
	}{
		{aliceID, 95, 2024},
		{aliceID, 88, 2024},
		{aliceID, 91, 2025},
		{bobID, 72, 2024},
		{bobID, 78, 2025},
	}

	for _, s := range scores {
		_, err = pool.Exec(ctx,
			`INSERT INTO performance (student_id, score, academic_year) VALUES ($1, $2, $3)`,
			s.student, s.score, s.year,
		)

		if err != nil {
			return err
		}
	}

	alerts := []struct {
		title  string
		desc   string
		status string
	}{
		{"Parent-teacher meeting", "Scheduled for next Friday", "active"},
		{"Assignment submission due", "Math homework closes Monday", "pending"},
		{"Library books overdue", "Return before end of term", "resolved"},
	}

	for _, a := range alerts {
		_, err = pool.Exec(ctx,
			`INSERT INTO alerts (title, description, status) VALUES ($1, $2, $3)`,
			a.title, a.desc, a.status,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
