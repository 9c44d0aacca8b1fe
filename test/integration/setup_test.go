package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

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

// globalPool is the shared test database pool, initialized once in TestMain
// with all migrations applied.
var globalPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr, cleanup, err := startPostgresContainer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}

	if _, err := db.NewMigrator(pool, findMigrationsDir()).Up(ctx, "public"); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	globalPool = pool
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// findMigrationsDir locates the migrations directory relative to this file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> repo root
	return filepath.Join(dir, "..", "..", "migrations")
}

// services bundles everything a lifecycle test needs, wired against the real
// database exactly as the server does it.
type services struct {
	cases     *cases.Service
	tasks     *tasks.Service
	financial *financial.Service
	schedule  *schedule.Service
	pharmacy  *pharmacy.Service
	audit     *audit.Service
}

func newServices() *services {
	caseRepo := cases.NewCaseRepoPG(globalPool)
	prescriptionRepo := cases.NewPrescriptionRepoPG(globalPool)
	insuranceRepo := cases.NewInsuranceRepoPG(globalPool)
	patientRepo := identity.NewPatientRepoPG(globalPool)
	clearanceRepo := financial.NewClearanceRepoPG(globalPool)
	taskRepo := tasks.NewTaskRepoPG(globalPool)
	scheduleRepo := schedule.NewScheduleRepoPG(globalPool)
	orderRepo := pharmacy.NewOrderRepoPG(globalPool)
	auditSvc := audit.NewService(audit.NewTimelineRepoPG(globalPool), audit.NewAuditLogRepoPG(globalPool))

	taskSvc := tasks.NewService(taskRepo, caseRepo, auditSvc)
	records := cases.NewRecordSource(prescriptionRepo, insuranceRepo, clearanceRepo, taskSvc, scheduleRepo, orderRepo)
	engine := workflow.NewEngine(workflow.DefaultGraph, records)

	return &services{
		cases:     cases.NewService(globalPool, caseRepo, prescriptionRepo, insuranceRepo, patientRepo, engine, auditSvc),
		tasks:     taskSvc,
		financial: financial.NewService(clearanceRepo, caseRepo, auditSvc),
		schedule:  schedule.NewService(scheduleRepo, caseRepo, auditSvc),
		pharmacy:  pharmacy.NewService(orderRepo, caseRepo, auditSvc),
		audit:     auditSvc,
	}
}

// createTestOrganization inserts an organization row and returns its id.
func createTestOrganization(t *testing.T, ctx context.Context, name string, orgType admin.OrgType) uuid.UUID {
	t.Helper()
	org := &admin.Organization{Name: name, Type: orgType}
	if err := admin.NewOrganizationRepoPG(globalPool).Create(ctx, org); err != nil {
		t.Fatalf("create test organization: %v", err)
	}
	return org.ID
}

func ptrStr(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func ptrTime(t time.Time) *time.Time { return &t }
