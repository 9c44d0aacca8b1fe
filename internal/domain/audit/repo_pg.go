package audit

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

type timelineRepoPG struct{ pool *pgxpool.Pool }

func NewTimelineRepoPG(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepoPG{pool: pool}
}

func (r *timelineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *timelineRepoPG) Append(ctx context.Context, e *TimelineEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO timeline_events (id, case_id, event_type, actor_user_id, metadata)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		e.ID, e.CaseID, e.EventType, e.ActorUserID, e.Metadata).Scan(&e.CreatedAt)
}

func (r *timelineRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*TimelineEvent, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM timeline_events WHERE case_id = $1`, caseID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, case_id, event_type, actor_user_id, metadata, created_at
		FROM timeline_events
		WHERE case_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, caseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*TimelineEvent
	for rows.Next() {
		var e TimelineEvent
		if err := rows.Scan(&e.ID, &e.CaseID, &e.EventType, &e.ActorUserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, &e)
	}
	return events, total, rows.Err()
}

type auditLogRepoPG struct{ pool *pgxpool.Pool }

func NewAuditLogRepoPG(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepoPG{pool: pool}
}

func (r *auditLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *auditLogRepoPG) Append(ctx context.Context, l *AuditLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, metadata)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		l.ID, l.ActorUserID, l.Action, l.EntityType, l.EntityID, l.Metadata).Scan(&l.CreatedAt)
}

func (r *auditLogRepoPG) List(ctx context.Context, limit, offset int) ([]*AuditLog, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, actor_user_id, action, entity_type, entity_id, metadata, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.ActorUserID, &l.Action, &l.EntityType, &l.EntityID, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, &l)
	}
	return logs, total, rows.Err()
}
