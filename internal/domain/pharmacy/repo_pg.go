package pharmacy

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

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

func (r *orderRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orderCols = `id, case_id, pushed_at, ship_to, requested_arrival_date,
	fulfillment_status, pharmacy_notes, ndc, lot, expiration_date, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CaseID, &o.PushedAt, &o.ShipTo, &o.RequestedArrivalDate,
		&o.FulfillmentStatus, &o.PharmacyNotes, &o.NDC, &o.Lot, &o.ExpirationDate,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepoPG) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.FulfillmentStatus == "" {
		o.FulfillmentStatus = FulfillmentNotStarted
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pharmacy_orders
			(id, case_id, pushed_at, ship_to, requested_arrival_date,
			 fulfillment_status, pharmacy_notes, ndc, lot, expiration_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		o.ID, o.CaseID, o.PushedAt, o.ShipTo, o.RequestedArrivalDate,
		o.FulfillmentStatus, o.PharmacyNotes, o.NDC, o.Lot, o.ExpirationDate).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM pharmacy_orders WHERE case_id = $1`, caseID))
}

func (r *orderRepoPG) Update(ctx context.Context, o *Order) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE pharmacy_orders
		SET ship_to = $2, requested_arrival_date = $3, fulfillment_status = $4,
			pharmacy_notes = $5, ndc = $6, lot = $7, expiration_date = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		o.ID, o.ShipTo, o.RequestedArrivalDate, o.FulfillmentStatus,
		o.PharmacyNotes, o.NDC, o.Lot, o.ExpirationDate).Scan(&o.UpdatedAt)
}
