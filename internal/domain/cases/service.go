package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/caseflow/internal/domain/audit"
	"github.com/caseflow/caseflow/internal/domain/identity"
	"github.com/caseflow/caseflow/internal/domain/workflow"
	"github.com/caseflow/caseflow/internal/platform/db"
)

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// PatientInput is the inline patient payload accepted on case creation and
// attachment.
type PatientInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	DOB       *time.Time `json:"dob,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"`
}

func (in PatientInput) toPatient() *identity.Patient {
	return &identity.Patient{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		DOB:       in.DOB,
		Phone:     in.Phone,
		Email:     in.Email,
	}
}

// CreateRequest opens a new referral. The caller may reference an existing
// patient, supply one inline, or leave the case patient-less for now.
type CreateRequest struct {
	PatientID     *uuid.UUID    `json:"patient_id,omitempty"`
	Patient       *PatientInput `json:"patient,omitempty"`
	ProviderOrgID *uuid.UUID    `json:"provider_org_id,omitempty"`
}

// PrescriptionUpdate is a partial prescription mutation; nil fields are left
// unchanged.
type PrescriptionUpdate struct {
	DrugName       *string `json:"drug_name,omitempty"`
	Dose           *string `json:"dose,omitempty"`
	Frequency      *string `json:"frequency,omitempty"`
	Route          *string `json:"route,omitempty"`
	DiagnosisICD10 *string `json:"diagnosis_icd10,omitempty"`
}

func (u PrescriptionUpdate) changedFields() []string {
	var fields []string
	if u.DrugName != nil {
		fields = append(fields, "drug_name")
	}
	if u.Dose != nil {
		fields = append(fields, "dose")
	}
	if u.Frequency != nil {
		fields = append(fields, "frequency")
	}
	if u.Route != nil {
		fields = append(fields, "route")
	}
	if u.DiagnosisICD10 != nil {
		fields = append(fields, "diagnosis_icd10")
	}
	return fields
}

// InsuranceUpdate is a partial insurance mutation; nil fields are left
// unchanged.
type InsuranceUpdate struct {
	PayerName *string `json:"payer_name,omitempty"`
	MemberID  *string `json:"member_id,omitempty"`
	GroupID   *string `json:"group_id,omitempty"`
}

func (u InsuranceUpdate) changedFields() []string {
	var fields []string
	if u.PayerName != nil {
		fields = append(fields, "payer_name")
	}
	if u.MemberID != nil {
		fields = append(fields, "member_id")
	}
	if u.GroupID != nil {
		fields = append(fields, "group_id")
	}
	return fields
}

// Service owns the case aggregate. It is the only writer of case status, and
// status only moves through the workflow engine.
type Service struct {
	repo          CaseRepository
	prescriptions PrescriptionRepository
	insurance     InsuranceRepository
	patients      identity.PatientRepository
	engine        *workflow.Engine
	audit         *audit.Service
	inTx          func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(
	pool *pgxpool.Pool,
	repo CaseRepository,
	prescriptions PrescriptionRepository,
	insurance InsuranceRepository,
	patients identity.PatientRepository,
	engine *workflow.Engine,
	auditSvc *audit.Service,
) *Service {
	return &Service{
		repo:          repo,
		prescriptions: prescriptions,
		insurance:     insurance,
		patients:      patients,
		engine:        engine,
		audit:         auditSvc,
		inTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// Create opens a referral in REFERRAL_RECEIVED, attaching an existing patient
// or creating one inline, and records the CASE_CREATED event and audit entry
// in the same transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest, actorID *uuid.UUID) (*Case, error) {
	if req.ProviderOrgID == nil {
		return nil, fmt.Errorf("provider_org_id is required")
	}

	var created *Case
	err := s.inTx(ctx, func(ctx context.Context) error {
		var patientID *uuid.UUID
		if req.PatientID != nil {
			p, err := s.patients.GetByID(ctx, *req.PatientID)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPatientNotFound
			} else if err != nil {
				return err
			}
			patientID = &p.ID
		} else if req.Patient != nil {
			p := req.Patient.toPatient()
			if err := s.patients.Create(ctx, p); err != nil {
				return fmt.Errorf("create patient: %w", err)
			}
			patientID = &p.ID
		}

		c := &Case{
			PatientID:       patientID,
			ProviderOrgID:   *req.ProviderOrgID,
			Status:          workflow.StatusReferralReceived,
			CreatedByUserID: actorID,
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create case: %w", err)
		}

		if err := s.audit.RecordEvent(ctx, c.ID, audit.EventCaseCreated, actorID,
			audit.CaseCreatedPayload{Status: string(c.Status)}); err != nil {
			return err
		}
		if err := s.audit.AppendLog(ctx, &audit.AuditLog{
			ActorUserID: actorID,
			Action:      audit.ActionCaseCreated,
			EntityType:  "case",
			EntityID:    &c.ID,
		}); err != nil {
			return err
		}
		created = c
		return nil
	})
	return created, err
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	return c, err
}

// Detail loads the case aggregate: the case row plus its patient,
// prescription, and insurance where present.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	c, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Case: *c}

	if c.PatientID != nil {
		p, err := s.patients.GetByID(ctx, *c.PatientID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load patient: %w", err)
		}
		d.Patient = p
	}

	rx, err := s.prescriptions.GetByCase(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	d.Prescription = rx

	ins, err := s.insurance.GetByCase(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load insurance: %w", err)
	}
	d.Insurance = ins

	return d, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Case, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Transition moves the case to target through the workflow engine. The row
// lock, engine evaluation, status write, and timeline/audit appends all
// happen in one transaction, so a failed transition leaves nothing behind
// and concurrent transitions on the same case serialize.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target workflow.Status, actorID *uuid.UUID) (*Case, error) {
	var updated *Case
	err := s.inTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCaseNotFound
		} else if err != nil {
			return err
		}

		view := &workflow.CaseView{ID: c.ID, Status: c.Status}
		result, err := s.engine.Transition(ctx, view, target, actorID)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(ctx, c.ID, view.Status); err != nil {
			return fmt.Errorf("update case status: %w", err)
		}
		if err := s.audit.AppendEvent(ctx, result.Event); err != nil {
			return err
		}
		if err := s.audit.AppendLog(ctx, result.Audit); err != nil {
			return err
		}

		c.Status = view.Status
		updated = c
		return nil
	})
	return updated, err
}

// Blockers reports what currently stands between the case and readiness,
// straight from the workflow engine.
func (s *Service) Blockers(ctx context.Context, id uuid.UUID) ([]workflow.Blocker, error) {
	c, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Blockers(ctx, &workflow.CaseView{ID: c.ID, Status: c.Status})
}

// AssignInfusionOrg routes the case to an infusion center and records the
// INFUSION_ORG_ASSIGNED event.
func (s *Service) AssignInfusionOrg(ctx context.Context, id, orgID uuid.UUID, actorID *uuid.UUID) (*Case, error) {
	var updated *Case
	err := s.inTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCaseNotFound
		} else if err != nil {
			return err
		}

		if err := s.repo.AssignInfusionOrg(ctx, id, orgID); err != nil {
			return fmt.Errorf("assign infusion org: %w", err)
		}
		if err := s.audit.RecordEvent(ctx, id, audit.EventInfusionOrgAssigned, actorID,
			audit.AssignmentPayload{InfusionOrgID: orgID.String()}); err != nil {
			return err
		}

		c.InfusionOrgID = &orgID
		updated = c
		return nil
	})
	return updated, err
}

// AttachPatient creates a patient and links it to the case, recording a
// PATIENT_ATTACHED event.
func (s *Service) AttachPatient(ctx context.Context, id uuid.UUID, in PatientInput, actorID *uuid.UUID) (*identity.Patient, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}

	var patient *identity.Patient
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); errors.Is(err, pgx.ErrNoRows) {
			return ErrCaseNotFound
		} else if err != nil {
			return err
		}

		p := in.toPatient()
		if err := s.patients.Create(ctx, p); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		if err := s.repo.AttachPatient(ctx, id, p.ID); err != nil {
			return fmt.Errorf("attach patient: %w", err)
		}
		if err := s.audit.RecordEvent(ctx, id, audit.EventPatientAttached, actorID, nil); err != nil {
			return err
		}
		patient = p
		return nil
	})
	return patient, err
}

// UpsertPrescription merges the changed fields into the case's prescription,
// creating it on first write, and records a PRESCRIPTION_UPDATED event
// naming them.
func (s *Service) UpsertPrescription(ctx context.Context, id uuid.UUID, upd PrescriptionUpdate, actorID *uuid.UUID) (*Prescription, error) {
	if _, err := s.GetCase(ctx, id); err != nil {
		return nil, err
	}

	rx, err := s.prescriptions.GetByCase(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		rx = &Prescription{CaseID: id}
	} else if err != nil {
		return nil, err
	}

	if upd.DrugName != nil {
		rx.DrugName = upd.DrugName
	}
	if upd.Dose != nil {
		rx.Dose = upd.Dose
	}
	if upd.Frequency != nil {
		rx.Frequency = upd.Frequency
	}
	if upd.Route != nil {
		rx.Route = upd.Route
	}
	if upd.DiagnosisICD10 != nil {
		rx.DiagnosisICD10 = upd.DiagnosisICD10
	}

	if err := s.prescriptions.Upsert(ctx, rx); err != nil {
		return nil, fmt.Errorf("upsert prescription: %w", err)
	}

	if err := s.audit.RecordEvent(ctx, id, audit.EventPrescriptionUpdated, actorID,
		audit.FieldChangePayload{Fields: upd.changedFields()}); err != nil {
		return nil, err
	}
	return rx, nil
}

// UpsertInsurance merges the changed fields into the case's insurance record
// and records an INSURANCE_UPDATED event naming them.
func (s *Service) UpsertInsurance(ctx context.Context, id uuid.UUID, upd InsuranceUpdate, actorID *uuid.UUID) (*Insurance, error) {
	if _, err := s.GetCase(ctx, id); err != nil {
		return nil, err
	}

	ins, err := s.insurance.GetByCase(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		ins = &Insurance{CaseID: id}
	} else if err != nil {
		return nil, err
	}

	if upd.PayerName != nil {
		ins.PayerName = upd.PayerName
	}
	if upd.MemberID != nil {
		ins.MemberID = upd.MemberID
	}
	if upd.GroupID != nil {
		ins.GroupID = upd.GroupID
	}

	if err := s.insurance.Upsert(ctx, ins); err != nil {
		return nil, fmt.Errorf("upsert insurance: %w", err)
	}

	if err := s.audit.RecordEvent(ctx, id, audit.EventInsuranceUpdated, actorID,
		audit.FieldChangePayload{Fields: upd.changedFields()}); err != nil {
		return nil, err
	}
	return ins, nil
}

// Timeline lists the case's timeline events newest first.
func (s *Service) Timeline(ctx context.Context, id uuid.UUID, limit, offset int) ([]*audit.TimelineEvent, int, error) {
	if _, err := s.GetCase(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.audit.CaseTimeline(ctx, id, limit, offset)
}
