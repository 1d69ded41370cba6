package postgres

import (
	"context"
	"errors"

	"github.com/edutrackpro/edutrack/internal/domain/performance"
	"github.com/edutrackpro/edutrack/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PerformancesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPerformancesRepo(pool *pgxpool.Pool, prom *observability.Prom) *PerformancesRepo {
	return &PerformancesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *PerformancesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const recordColumns = `id, student_id, score, academic_year, created_at, updated_at`

func scanRecord(row pgx.Row, rec *performance.Record) error {
	return row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Score,
		&rec.AcademicYear,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
}

func (r *PerformancesRepo) collect(ctx context.Context, op, query string, args ...any) ([]performance.Record, error) {
	var out []performance.Record

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var rec performance.Record

			if err := scanRecord(rows, &rec); err != nil {
				return err
			}

			out = append(out, rec)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PerformancesRepo) List(ctx context.Context) ([]performance.Record, error) {
	return r.collect(ctx, "performance.list",
		`SELECT `+recordColumns+` FROM performance ORDER BY id`)
}

func (r *PerformancesRepo) GetByID(ctx context.Context, id int64) (performance.Record, error) {
	var rec performance.Record

	err := r.observe("performance.get", func() error {
		return scanRecord(
			r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM performance WHERE id = $1`, id),
			&rec,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return performance.Record{}, performance.ErrNotFound
		}

		return performance.Record{}, err
	}

	return rec, nil
}

func (r *PerformancesRepo) ListByStudent(ctx context.Context, studentID int64) ([]performance.Record, error) {
	return r.collect(ctx, "performance.list_by_student",
		`SELECT `+recordColumns+` FROM performance WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID)
}

// Recent returns the newest records first. The analytics engine takes these
// as-is for bucketing and reverses them itself when it needs chronological
// order.
func (r *PerformancesRepo) Recent(ctx context.Context, studentID int64, limit int) ([]performance.Record, error) {
	return r.collect(ctx, "performance.recent",
		`SELECT `+recordColumns+` FROM performance WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2`,
		studentID, limit)
}

// AverageScore computes the rounded mean over all of a student's records,
// zero when there are none.
func (r *PerformancesRepo) AverageScore(ctx context.Context, studentID int64) (int, error) {
	var avg int

	err := r.observe("performance.average", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COALESCE(ROUND(AVG(score)), 0) FROM performance WHERE student_id = $1`,
			studentID,
		).Scan(&avg)
	})

	if err != nil {
		return 0, err
	}

	return avg, nil
}

func (r *PerformancesRepo) Create(ctx context.Context, req performance.CreateRecordRequest) (performance.Record, error) {
	var rec performance.Record

	err := r.observe("performance.create", func() error {
		return scanRecord(
			r.pool.QueryRow(ctx,
				`INSERT INTO performance (student_id, score, academic_year)
				 VALUES ($1, $2, $3)
				 RETURNING `+recordColumns,
				req.StudentID, *req.Score, req.AcademicYear,
			),
			&rec,
		)
	})

	if err != nil {
		return performance.Record{}, err
	}

	return rec, nil
}

func (r *PerformancesRepo) Update(ctx context.Context, id int64, req performance.UpdateRecordRequest) (performance.Record, error) {
	var rec performance.Record

	err := r.observe("performance.update", func() error {
		return scanRecord(
			r.pool.QueryRow(ctx,
				`UPDATE performance
				 SET student_id = $2,
				     score = $3,
				     academic_year = $4,
				     updated_at = NOW()
				 WHERE id = $1
				 RETURNING `+recordColumns,
				id, req.StudentID, *req.Score, req.AcademicYear,
			),
			&rec,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return performance.Record{}, performance.ErrNotFound
		}

		return performance.Record{}, err
	}

	return rec, nil
}

func (r *PerformancesRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("performance.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM performance WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return performance.ErrNotFound
		}

		return nil
	})
}
