// Package sandbox loads demo data for local development: two organizations,
// their users, and ten referral cases parked at representative lifecycle
// stages with the records each stage implies.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/internal/domain/admin"
	"github.com/caseflow/caseflow/internal/domain/audit"
	"github.com/caseflow/caseflow/internal/domain/cases"
	"github.com/caseflow/caseflow/internal/domain/financial"
	"github.com/caseflow/caseflow/internal/domain/identity"
	"github.com/caseflow/caseflow/internal/domain/pharmacy"
	"github.com/caseflow/caseflow/internal/domain/schedule"
	"github.com/caseflow/caseflow/internal/domain/tasks"
	"github.com/caseflow/caseflow/internal/domain/workflow"
	"github.com/caseflow/caseflow/internal/platform/db"
)

var (
	providerOrgID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	infusionOrgID  = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	providerUserID = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	infusionUserID = uuid.MustParse("10000000-0000-0000-0000-000000000002")
)

type Seeder struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	orgs       admin.OrganizationRepository
	users      admin.UserRepository
	patients   identity.PatientRepository
	cases      cases.CaseRepository
	rx         cases.PrescriptionRepository
	insurance  cases.InsuranceRepository
	clearances financial.ClearanceRepository
	tasks      tasks.TaskRepository
	schedules  schedule.ScheduleRepository
	orders     pharmacy.OrderRepository
	timeline   audit.TimelineRepository
}

func NewSeeder(pool *pgxpool.Pool, logger zerolog.Logger) *Seeder {
	return &Seeder{
		pool:       pool,
		logger:     logger,
		orgs:       admin.NewOrganizationRepoPG(pool),
		users:      admin.NewUserRepoPG(pool),
		patients:   identity.NewPatientRepoPG(pool),
		cases:      cases.NewCaseRepoPG(pool),
		rx:         cases.NewPrescriptionRepoPG(pool),
		insurance:  cases.NewInsuranceRepoPG(pool),
		clearances: financial.NewClearanceRepoPG(pool),
		tasks:      tasks.NewTaskRepoPG(pool),
		schedules:  schedule.NewScheduleRepoPG(pool),
		orders:     pharmacy.NewOrderRepoPG(pool),
		timeline:   audit.NewTimelineRepoPG(pool),
	}
}

// Run seeds the database unless organizations already exist. Everything goes
// in one transaction so a failed seed leaves the database empty.
func (s *Seeder) Run(ctx context.Context) error {
	existing, _, err := s.orgs.List(ctx, nil, 1, 0)
	if err != nil {
		return fmt.Errorf("check existing organizations: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info().Msg("database already seeded, skipping")
		return nil
	}

	err = db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.seedOrgsAndUsers(ctx); err != nil {
			return err
		}
		patients, err := s.seedPatients(ctx)
		if err != nil {
			return err
		}
		return s.seedCases(ctx, patients)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int("organizations", 2).
		Int("users", 2).
		Int("patients", len(patientRows)).
		Int("cases", len(caseStages)).
		Msg("seed data created")
	return nil
}

func (s *Seeder) seedOrgsAndUsers(ctx context.Context) error {
	orgs := []*admin.Organization{
		{ID: providerOrgID, Name: "Metro Rheumatology Associates", Type: admin.OrgTypeProvider},
		{ID: infusionOrgID, Name: "Specialty Infusion Center", Type: admin.OrgTypeInfusion},
	}
	for _, o := range orgs {
		if err := s.orgs.Create(ctx, o); err != nil {
			return fmt.Errorf("create organization %s: %w", o.Name, err)
		}
	}

	users := []*admin.User{
		{ID: providerUserID, Email: "provider@example.com", Role: admin.RoleProvider, OrgID: &providerOrgID},
		{ID: infusionUserID, Email: "admin@example.com", Role: admin.RoleInfusionAdmin, OrgID: &infusionOrgID},
	}
	for _, u := range users {
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}
	return nil
}

type patientRow struct {
	first, last, phone, email string
	dob                       time.Time
}

var patientRows = []patientRow{
	{"John", "Doe", "555-0101", "john.doe@email.com", time.Date(1965, 3, 15, 0, 0, 0, 0, time.UTC)},
	{"Jane", "Smith", "555-0102", "jane.smith@email.com", time.Date(1978, 7, 22, 0, 0, 0, 0, time.UTC)},
	{"Robert", "Johnson", "555-0103", "r.johnson@email.com", time.Date(1955, 11, 8, 0, 0, 0, 0, time.UTC)},
	{"Maria", "Garcia", "555-0104", "m.garcia@email.com", time.Date(1982, 1, 30, 0, 0, 0, 0, time.UTC)},
	{"David", "Wilson", "555-0105", "d.wilson@email.com", time.Date(1970, 5, 12, 0, 0, 0, 0, time.UTC)},
	{"Susan", "Brown", "555-0106", "s.brown@email.com", time.Date(1968, 9, 3, 0, 0, 0, 0, time.UTC)},
	{"Michael", "Davis", "555-0107", "m.davis@email.com", time.Date(1990, 2, 28, 0, 0, 0, 0, time.UTC)},
	{"Lisa", "Martinez", "555-0108", "l.martinez@email.com", time.Date(1985, 12, 17, 0, 0, 0, 0, time.UTC)},
	{"James", "Anderson", "555-0109", "j.anderson@email.com", time.Date(1972, 6, 9, 0, 0, 0, 0, time.UTC)},
	{"Patricia", "Taylor", "555-0110", "p.taylor@email.com", time.Date(1960, 4, 25, 0, 0, 0, 0, time.UTC)},
}

func (s *Seeder) seedPatients(ctx context.Context) ([]*identity.Patient, error) {
	out := make([]*identity.Patient, 0, len(patientRows))
	for _, row := range patientRows {
		dob, phone, email := row.dob, row.phone, row.email
		p := &identity.Patient{
			FirstName: row.first,
			LastName:  row.last,
			DOB:       &dob,
			Phone:     &phone,
			Email:     &email,
		}
		if err := s.patients.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create patient %s %s: %w", row.first, row.last, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type caseStage struct {
	status         workflow.Status
	assignInfusion bool
}

// One case per interesting lifecycle stage; later stages also get the
// records the workflow prerequisites check for.
var caseStages = []caseStage{
	{workflow.StatusReferralReceived, false},
	{workflow.StatusClinicalCompletenessCheck, true},
	{workflow.StatusBenefitsInvestigation, true},
	{workflow.StatusPriorAuthSubmitted, true},
	{workflow.StatusPriorAuthApproved, true},
	{workflow.StatusFinancialCounselingPending, true},
	{workflow.StatusFinancialCleared, true},
	{workflow.StatusWelcomeCallCompleted, true},
	{workflow.StatusScheduled, true},
	{workflow.StatusOnTherapy, true},
}

type drugRow struct {
	name, dose, frequency, route, icd10 string
}

var drugRows = []drugRow{
	{"Infliximab", "5mg/kg", "Every 8 weeks", "IV", "M05.79"},
	{"Rituximab", "1000mg", "Every 6 months", "IV", "M06.09"},
	{"Ocrelizumab", "600mg", "Every 6 months", "IV", "G35"},
	{"Natalizumab", "300mg", "Every 4 weeks", "IV", "G35"},
	{"Vedolizumab", "300mg", "Every 8 weeks", "IV", "K50.90"},
	{"Tocilizumab", "8mg/kg", "Every 4 weeks", "IV", "M06.09"},
	{"Abatacept", "1000mg", "Every 4 weeks", "IV", "M05.79"},
	{"Belimumab", "10mg/kg", "Every 4 weeks", "IV", "M32.9"},
	{"Eculizumab", "900mg", "Every 2 weeks", "IV", "D59.3"},
	{"IVIG", "2g/kg", "Every 3 weeks", "IV", "D80.1"},
}

func statusAtLeast(status workflow.Status, floor workflow.Status) bool {
	var si, fi int
	for i, s := range workflow.AllStatuses {
		if s == status {
			si = i
		}
		if s == floor {
			fi = i
		}
	}
	return si >= fi
}

func (s *Seeder) seedCases(ctx context.Context, patients []*identity.Patient) error {
	now := time.Now().UTC()

	for i, stage := range caseStages {
		c := &cases.Case{
			PatientID:       &patients[i].ID,
			ProviderOrgID:   providerOrgID,
			Status:          stage.status,
			CreatedByUserID: &providerUserID,
		}
		if stage.assignInfusion {
			c.InfusionOrgID = &infusionOrgID
		}
		if err := s.cases.Create(ctx, c); err != nil {
			return fmt.Errorf("create case %d: %w", i, err)
		}

		drug := drugRows[i]
		name, dose, freq, route, icd10 := drug.name, drug.dose, drug.frequency, drug.route, drug.icd10
		if err := s.rx.Upsert(ctx, &cases.Prescription{
			CaseID:         c.ID,
			DrugName:       &name,
			Dose:           &dose,
			Frequency:      &freq,
			Route:          &route,
			DiagnosisICD10: &icd10,
		}); err != nil {
			return fmt.Errorf("seed prescription: %w", err)
		}

		payer := "Blue Cross Blue Shield"
		memberID := fmt.Sprintf("BCBS-%d", 100000+i)
		groupID := fmt.Sprintf("GRP-%d", 5000+i)
		if err := s.insurance.Upsert(ctx, &cases.Insurance{
			CaseID:    c.ID,
			PayerName: &payer,
			MemberID:  &memberID,
			GroupID:   &groupID,
		}); err != nil {
			return fmt.Errorf("seed insurance: %w", err)
		}

		if err := s.timeline.Append(ctx, &audit.TimelineEvent{
			CaseID:      c.ID,
			EventType:   audit.EventCaseCreated,
			ActorUserID: &providerUserID,
			Metadata:    audit.MustMarshal(audit.CaseCreatedPayload{Status: string(workflow.StatusReferralReceived)}),
		}); err != nil {
			return fmt.Errorf("seed timeline event: %w", err)
		}

		if statusAtLeast(stage.status, workflow.StatusFinancialCleared) {
			verifiedAt := now.AddDate(0, 0, -15)
			clearedAt := now.AddDate(0, 0, -14)
			estimate := 2500.00
			if err := s.clearances.Upsert(ctx, &financial.Clearance{
				CaseID:                  c.ID,
				BenefitsVerifiedAt:      &verifiedAt,
				CostEstimateAmount:      &estimate,
				PatientAcknowledgedCost: true,
				ClearedAt:               &clearedAt,
			}); err != nil {
				return fmt.Errorf("seed financial clearance: %w", err)
			}
		}

		if statusAtLeast(stage.status, workflow.StatusWelcomeCallCompleted) {
			payload, _ := json.Marshal(map[string]any{
				"reached":    true,
				"outcome":    "REACHED",
				"next_steps": "Proceed to scheduling",
			})
			if err := s.tasks.Create(ctx, &tasks.Task{
				CaseID:      c.ID,
				Type:        tasks.TypeWelcomeCall,
				Status:      tasks.StatusDone,
				OwnerUserID: &infusionUserID,
				Payload:     payload,
			}); err != nil {
				return fmt.Errorf("seed welcome call task: %w", err)
			}
		}

		if statusAtLeast(stage.status, workflow.StatusScheduled) {
			location := "Specialty Infusion Center - Suite 200"
			duration := 120
			if err := s.schedules.Replace(ctx, &schedule.Schedule{
				CaseID:          c.ID,
				DateTime:        now.AddDate(0, 0, 7+i),
				Location:        &location,
				DurationMinutes: &duration,
			}); err != nil {
				return fmt.Errorf("seed schedule: %w", err)
			}
		}

		if stage.status == workflow.StatusOnTherapy {
			pushedAt := now.AddDate(0, 0, -5)
			shipTo := "Specialty Infusion Center - Suite 200"
			arrival := now.AddDate(0, 0, 2)
			notes := "Standard delivery"
			if err := s.orders.Create(ctx, &pharmacy.Order{
				CaseID:               c.ID,
				PushedAt:             &pushedAt,
				ShipTo:               &shipTo,
				RequestedArrivalDate: &arrival,
				FulfillmentStatus:    pharmacy.FulfillmentReceived,
				PharmacyNotes:        &notes,
			}); err != nil {
				return fmt.Errorf("seed pharmacy order: %w", err)
			}
		}
	}
	return nil
}
