package financial

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

type clearanceRepoPG struct{ pool *pgxpool.Pool }

func NewClearanceRepoPG(pool *pgxpool.Pool) ClearanceRepository {
	return &clearanceRepoPG{pool: pool}
}

func (r *clearanceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const clearanceCols = `id, case_id, benefits_verified_at, cost_estimate_amount,
	patient_acknowledged_cost, assistance_program, cleared_at, created_at, updated_at`

func scanClearance(row pgx.Row) (*Clearance, error) {
	var fc Clearance
	err := row.Scan(&fc.ID, &fc.CaseID, &fc.BenefitsVerifiedAt, &fc.CostEstimateAmount,
		&fc.PatientAcknowledgedCost, &fc.AssistanceProgram, &fc.ClearedAt, &fc.CreatedAt, &fc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

func (r *clearanceRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Clearance, error) {
	return scanClearance(r.conn(ctx).QueryRow(ctx,
		`SELECT `+clearanceCols+` FROM financial_clearances WHERE case_id = $1`, caseID))
}

func (r *clearanceRepoPG) Upsert(ctx context.Context, fc *Clearance) error {
	if fc.ID == uuid.Nil {
		fc.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financial_clearances
			(id, case_id, benefits_verified_at, cost_estimate_amount,
			 patient_acknowledged_cost, assistance_program, cleared_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (case_id) DO UPDATE SET
			benefits_verified_at = EXCLUDED.benefits_verified_at,
			cost_estimate_amount = EXCLUDED.cost_estimate_amount,
			patient_acknowledged_cost = EXCLUDED.patient_acknowledged_cost,
			assistance_program = EXCLUDED.assistance_program,
			cleared_at = EXCLUDED.cleared_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		fc.ID, fc.CaseID, fc.BenefitsVerifiedAt, fc.CostEstimateAmount,
		fc.PatientAcknowledgedCost, fc.AssistanceProgram, fc.ClearedAt).
		Scan(&fc.ID, &fc.CreatedAt, &fc.UpdatedAt)
}
