package tasks

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

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

func (r *taskRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const taskCols = `id, case_id, type, status, owner_user_id, due_at, payload, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.CaseID, &t.Type, &t.Status, &t.OwnerUserID, &t.DueAt, &t.Payload, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tasks (id, case_id, type, status, owner_user_id, due_at, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		t.ID, t.CaseID, t.Type, t.Status, t.OwnerUserID, t.DueAt, t.Payload).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
}

func (r *taskRepoPG) Update(ctx context.Context, t *Task) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE tasks
		SET status = $2, owner_user_id = $3, due_at = $4, payload = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Status, t.OwnerUserID, t.DueAt, t.Payload).Scan(&t.UpdatedAt)
}

func (r *taskRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+taskCols+` FROM tasks
		WHERE case_id = $1
		ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *taskRepoPG) HasDoneTask(ctx context.Context, caseID uuid.UUID, taskType TaskType) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE case_id = $1 AND type = $2 AND status = $3
		)`, caseID, taskType, StatusDone).Scan(&exists)
	return exists, err
}
