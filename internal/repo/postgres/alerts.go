package postgres

import (
	"context"
	"errors"

	"github.com/edutrackpro/edutrack/internal/domain/alert"
	"github.com/edutrackpro/edutrack/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAlertsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AlertsRepo {
	return &AlertsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *AlertsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const alertColumns = `id, title, COALESCE(description, ''), status, created_at, updated_at`

func scanAlert(row pgx.Row, a *alert.Alert) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

func (r *AlertsRepo) collect(ctx context.Context, op, query string, args ...any) ([]alert.Alert, error) {
	var out []alert.Alert

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var a alert.Alert

			if err := scanAlert(rows, &a); err != nil {
				return err
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AlertsRepo) List(ctx context.Context) ([]alert.Alert, error) {
	return r.collect(ctx, "alerts.list",
		`SELECT `+alertColumns+` FROM alerts ORDER BY created_at DESC`)
}

func (r *AlertsRepo) ListByStatus(ctx context.Context, status string) ([]alert.Alert, error) {
	return r.collect(ctx, "alerts.list_by_status",
		`SELECT `+alertColumns+` FROM alerts WHERE status = $1 ORDER BY created_at DESC`,
		status)
}

// Latest feeds the parent dashboard. Alerts are system-wide in the current
// model, so this is not scoped to a student.
func (r *AlertsRepo) Latest(ctx context.Context, limit int) ([]alert.Alert, error) {
	return r.collect(ctx, "alerts.latest",
		`SELECT `+alertColumns+` FROM alerts ORDER BY created_at DESC LIMIT $1`,
		limit)
}

// CountUpcoming counts alerts that look like upcoming submissions. This is a
// title heuristic, not a modeled field.
func (r *AlertsRepo) CountUpcoming(ctx context.Context) (int, error) {
	var count int

	err := r.observe("alerts.count_upcoming", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM alerts WHERE title ILIKE '%submission%' OR status = 'upcoming'`,
		).Scan(&count)
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *AlertsRepo) GetByID(ctx context.Context, id int64) (alert.Alert, error) {
	var a alert.Alert

	err := r.observe("alerts.get", func() error {
		return scanAlert(
			r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id),
			&a,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return alert.Alert{}, alert.ErrNotFound
		}

		return alert.Alert{}, err
	}

	return a, nil
}

func (r *AlertsRepo) Create(ctx context.Context, req alert.CreateAlertRequest) (alert.Alert, error) {
	status := req.Status

	if status == "" {
		status = string(alert.StatusPending)
	}

	var a alert.Alert

	err := r.observe("alerts.create", func() error {
		return scanAlert(
			r.pool.QueryRow(ctx,
				`INSERT INTO alerts (title, description, status)
				 VALUES ($1, NULLIF($2, ''), $3)
				 RETURNING `+alertColumns,
				req.Title, req.Description, status,
			),
			&a,
		)
	})

	if err != nil {
		return alert.Alert{}, err
	}

	return a, nil
}

func (r *AlertsRepo) Update(ctx context.Context, id int64, req alert.UpdateAlertRequest) (alert.Alert, error) {
	status := req.Status

	if status == "" {
		status = string(alert.StatusPending)
	}

	var a alert.Alert

	err := r.observe("alerts.update", func() error {
		return scanAlert(
			r.pool.QueryRow(ctx,
				`UPDATE alerts
				 SET title = $2,
				     description = NULLIF($3, ''),
				     status = $4,
				     updated_at = NOW()
				 WHERE id = $1
				 RETURNING `+alertColumns,
				id, req.Title, req.Description, status,
			),
			&a,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return alert.Alert{}, alert.ErrNotFound
		}

		return alert.Alert{}, err
	}

	return a, nil
}

func (r *AlertsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("alerts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return alert.ErrNotFound
		}

		return nil
	})
}

// Stats powers the admin dashboard: entity counts plus the school-wide
// rounded average score.
type Stats struct {
	TotalStudents  int `json:"totalStudents"`
	TotalTeachers  int `json:"totalTeachers"`
	ActiveAlerts   int `json:"activeAlerts"`
	AvgPerformance int `json:"avgPerformance"`
}

type StatsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStatsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StatsRepo {
	return &StatsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *StatsRepo) Collect(ctx context.Context) (Stats, error) {
	var s Stats

	fn := func() error {
		return r.pool.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM students),
				(SELECT COUNT(*) FROM teacher_profiles),
				(SELECT COUNT(*) FROM alerts WHERE status = 'active'),
				(SELECT COALESCE(ROUND(AVG(score)), 0) FROM performance)
		`).Scan(&s.TotalStudents, &s.TotalTeachers, &s.ActiveAlerts, &s.AvgPerformance)
	}

	var err error

	if r.prom != nil {
		err = r.prom.ObserveDB("stats.collect", fn)
	} else {
		err = fn()
	}

	if err != nil {
		return Stats{}, err
	}

	return s, nil
}
