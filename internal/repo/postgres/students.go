package postgres

import (
	"context"
	"errors"

	"github.com/edutrackpro/edutrack/internal/domain/student"
	"github.com/edutrackpro/edutrack/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StudentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStudentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StudentsRepo {
	return &StudentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *StudentsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const studentColumns = `id, name, COALESCE(email, ''), COALESCE(roll_number, ''), COALESCE(class, ''), parent_id, teacher_id, created_at, updated_at`

func scanStudent(row pgx.Row, s *student.Student) error {
	return row.Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.RollNumber,
		&s.Class,
		&s.ParentID,
		&s.TeacherID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

func (r *StudentsRepo) List(ctx context.Context) ([]student.Student, error) {
	var out []student.Student

	err := r.observe("students.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var s student.Student

			if err := scanStudent(rows, &s); err != nil {
				return err
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *StudentsRepo) GetByID(ctx context.Context, id int64) (student.Student, error) {
	var s student.Student

	err := r.observe("students.get", func() error {
		return scanStudent(
			r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id),
			&s,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}

		return student.Student{}, err
	}

	return s, nil
}

// FirstByParent returns the parent's first child in insertion order. The
// schema tolerates multiple children per parent but the dashboard surfaces
// only one; that is an acknowledged product limitation, not a bug here.
func (r *StudentsRepo) FirstByParent(ctx context.Context, parentID int64) (student.Student, error) {
	var s student.Student

	err := r.observe("students.first_by_parent", func() error {
		return scanStudent(
			r.pool.QueryRow(ctx,
				`SELECT `+studentColumns+` FROM students WHERE parent_id = $1 ORDER BY id LIMIT 1`,
				parentID,
			),
			&s,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}

		return student.Student{}, err
	}

	return s, nil
}

func (r *StudentsRepo) Create(ctx context.Context, req student.CreateStudentRequest) (student.Student, error) {
	var s student.Student

	err := r.observe("students.create", func() error {
		return scanStudent(
			r.pool.QueryRow(ctx,
				`INSERT INTO students (name, email, roll_number, class, parent_id, teacher_id)
				 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6)
				 RETURNING `+studentColumns,
				req.Name, req.Email, req.RollNumber, req.Class, req.ParentID, req.TeacherID,
			),
			&s,
		)
	})

	if err != nil {
		return student.Student{}, err
	}

	return s, nil
}

func (r *StudentsRepo) Update(ctx context.Context, id int64, req student.UpdateStudentRequest) (student.Student, error) {
	var s student.Student

	err := r.observe("students.update", func() error {
		return scanStudent(
			r.pool.QueryRow(ctx,
				`UPDATE students
				 SET name = $2,
				     email = NULLIF($3, ''),
				     roll_number = NULLIF($4, ''),
				     class = NULLIF($5, ''),
				     parent_id = $6,
				     teacher_id = $7,
				     updated_at = NOW()
				 WHERE id = $1
				 RETURNING `+studentColumns,
				id, req.Name, req.Email, req.RollNumber, req.Class, req.ParentID, req.TeacherID,
			),
			&s,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}

		return student.Student{}, err
	}

	return s, nil
}

func (r *StudentsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("students.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return student.ErrNotFound
		}

		return nil
	})
}
