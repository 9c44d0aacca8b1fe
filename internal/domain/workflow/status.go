package workflow

// Status is a case lifecycle status. The set of values is a frozen contract
// shared with every party integrating against the API: renumbering, renaming,
// or reordering them is a breaking change.
type Status string

const (
	StatusReferralReceived           Status = "REFERRAL_RECEIVED"
	StatusClinicalCompletenessCheck  Status = "CLINICAL_COMPLETENESS_CHECK"
	StatusBenefitsInvestigation      Status = "BENEFITS_INVESTIGATION"
	StatusPriorAuthSubmitted         Status = "PRIOR_AUTH_SUBMITTED"
	StatusPriorAuthApproved          Status = "PRIOR_AUTH_APPROVED"
	StatusFinancialCounselingPending Status = "FINANCIAL_COUNSELING_PENDING"
	StatusFinancialCleared           Status = "FINANCIAL_CLEARED"
	StatusWelcomeCallPending         Status = "WELCOME_CALL_PENDING"
	StatusWelcomeCallCompleted       Status = "WELCOME_CALL_COMPLETED"
	StatusSchedulingReady            Status = "SCHEDULING_READY"
	StatusScheduled                  Status = "SCHEDULED"
	StatusPharmacyPushPending        Status = "PHARMACY_PUSH_PENDING"
	StatusPharmacyPushed             Status = "PHARMACY_PUSHED"
	StatusDrugFulfillmentInProgress  Status = "DRUG_FULFILLMENT_IN_PROGRESS"
	StatusDrugReady                  Status = "DRUG_READY"
	StatusInfusionCompleted          Status = "INFUSION_COMPLETED"
	StatusOnTherapy                  Status = "ON_THERAPY"
	StatusDiscontinued               Status = "DISCONTINUED"
)

// AllStatuses lists every lifecycle status in lifecycle order.
var AllStatuses = []Status{
	StatusReferralReceived,
	StatusClinicalCompletenessCheck,
	StatusBenefitsInvestigation,
	StatusPriorAuthSubmitted,
	StatusPriorAuthApproved,
	StatusFinancialCounselingPending,
	StatusFinancialCleared,
	StatusWelcomeCallPending,
	StatusWelcomeCallCompleted,
	StatusSchedulingReady,
	StatusScheduled,
	StatusPharmacyPushPending,
	StatusPharmacyPushed,
	StatusDrugFulfillmentInProgress,
	StatusDrugReady,
	StatusInfusionCompleted,
	StatusOnTherapy,
	StatusDiscontinued,
}

var validStatuses = func() map[Status]bool {
	m := make(map[Status]bool, len(AllStatuses))
	for _, s := range AllStatuses {
		m[s] = true
	}
	return m
}()

// Valid reports whether s is a member of the lifecycle status enum.
func (s Status) Valid() bool { return validStatuses[s] }

func (s Status) String() string { return string(s) }
