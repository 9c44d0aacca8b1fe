package cases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/caseflow/internal/domain/workflow"
	"github.com/caseflow/caseflow/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository {
	return &caseRepoPG{pool: pool}
}

func (r *caseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const caseCols = `id, patient_id, provider_org_id, infusion_org_id, status,
	created_by_user_id, created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.PatientID, &c.ProviderOrgID, &c.InfusionOrgID, &c.Status,
		&c.CreatedByUserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepoPG) Create(ctx context.Context, c *Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = workflow.StatusReferralReceived
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO cases (id, patient_id, provider_org_id, infusion_org_id, status, created_by_user_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		c.ID, c.PatientID, c.ProviderOrgID, c.InfusionOrgID, c.Status, c.CreatedByUserID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE id = $1`, id))
}

func (r *caseRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE id = $1 FOR UPDATE`, id))
}

func (r *caseRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Case, int, error) {
	var conds []string
	var args []interface{}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ProviderOrgID != nil {
		args = append(args, *f.ProviderOrgID)
		conds = append(conds, fmt.Sprintf("provider_org_id = $%d", len(args)))
	}
	if f.InfusionOrgID != nil {
		args = append(args, *f.InfusionOrgID)
		conds = append(conds, fmt.Sprintf("(infusion_org_id = $%d OR infusion_org_id IS NULL)", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM cases"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT "+caseCols+" FROM cases"+where+
		" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *caseRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status workflow.Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepoPG) AssignInfusionOrg(ctx context.Context, id, orgID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE cases SET infusion_org_id = $2, updated_at = NOW() WHERE id = $1`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepoPG) AttachPatient(ctx context.Context, id, patientID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE cases SET patient_id = $2, updated_at = NOW() WHERE id = $1`, id, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepoPG) CaseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, case_id, drug_name, dose, frequency, route,
	diagnosis_icd10, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	err := row.Scan(&rx.ID, &rx.CaseID, &rx.DrugName, &rx.Dose, &rx.Frequency,
		&rx.Route, &rx.DiagnosisICD10, &rx.CreatedAt, &rx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rx, nil
}

func (r *prescriptionRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE case_id = $1`, caseID))
}

func (r *prescriptionRepoPG) Upsert(ctx context.Context, rx *Prescription) error {
	if rx.ID == uuid.Nil {
		rx.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (id, case_id, drug_name, dose, frequency, route, diagnosis_icd10)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (case_id) DO UPDATE SET
			drug_name = EXCLUDED.drug_name,
			dose = EXCLUDED.dose,
			frequency = EXCLUDED.frequency,
			route = EXCLUDED.route,
			diagnosis_icd10 = EXCLUDED.diagnosis_icd10,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		rx.ID, rx.CaseID, rx.DrugName, rx.Dose, rx.Frequency, rx.Route, rx.DiagnosisICD10).
		Scan(&rx.ID, &rx.CreatedAt, &rx.UpdatedAt)
}

type insuranceRepoPG struct{ pool *pgxpool.Pool }

func NewInsuranceRepoPG(pool *pgxpool.Pool) InsuranceRepository {
	return &insuranceRepoPG{pool: pool}
}

func (r *insuranceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const insuranceCols = `id, case_id, payer_name, member_id, group_id, created_at, updated_at`

func scanInsurance(row pgx.Row) (*Insurance, error) {
	var ins Insurance
	err := row.Scan(&ins.ID, &ins.CaseID, &ins.PayerName, &ins.MemberID, &ins.GroupID,
		&ins.CreatedAt, &ins.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (r *insuranceRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Insurance, error) {
	return scanInsurance(r.conn(ctx).QueryRow(ctx,
		`SELECT `+insuranceCols+` FROM insurance WHERE case_id = $1`, caseID))
}

func (r *insuranceRepoPG) Upsert(ctx context.Context, ins *Insurance) error {
	if ins.ID == uuid.Nil {
		ins.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO insurance (id, case_id, payer_name, member_id, group_id)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (case_id) DO UPDATE SET
			payer_name = EXCLUDED.payer_name,
			member_id = EXCLUDED.member_id,
			group_id = EXCLUDED.group_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		ins.ID, ins.CaseID, ins.PayerName, ins.MemberID, ins.GroupID).
		Scan(&ins.ID, &ins.CreatedAt, &ins.UpdatedAt)
}

func (r *insuranceRepoPG) ExistsForCase(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM insurance WHERE case_id = $1)`, caseID).Scan(&exists)
	return exists, err
}
