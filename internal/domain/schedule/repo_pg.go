package schedule

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/caseflow/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepoPG{pool: pool}
}

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *scheduleRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Schedule, error) {
	var s Schedule
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, case_id, date_time, location, duration_minutes, created_at, updated_at
		FROM schedules WHERE case_id = $1`, caseID).
		Scan(&s.ID, &s.CaseID, &s.DateTime, &s.Location, &s.DurationMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepoPG) Replace(ctx context.Context, s *Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO schedules (id, case_id, date_time, location, duration_minutes)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (case_id) DO UPDATE SET
			date_time = EXCLUDED.date_time,
			location = EXCLUDED.location,
			duration_minutes = EXCLUDED.duration_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		s.ID, s.CaseID, s.DateTime, s.Location, s.DurationMinutes).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *scheduleRepoPG) ExistsForCase(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schedules WHERE case_id = $1)`, caseID).Scan(&exists)
	return exists, err
}
