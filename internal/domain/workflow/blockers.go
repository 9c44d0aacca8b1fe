package workflow

import "strings"

// Blocker type codes, in the fixed report order.
const (
	BlockerMissingPrescription    = "MISSING_PRESCRIPTION"
	BlockerMissingRxFields        = "MISSING_RX_FIELDS"
	BlockerMissingInsurance       = "MISSING_INSURANCE"
	BlockerFinancialNotCleared    = "FINANCIAL_NOT_CLEARED"
	BlockerWelcomeCallNotComplete = "WELCOME_CALL_NOT_COMPLETE"
	BlockerScheduleNotSet         = "SCHEDULE_NOT_SET"
	BlockerPharmacyNotPushed      = "PHARMACY_NOT_PUSHED"
)

// Blocker is one advisory item from the blocker report. Fields is populated
// only for MISSING_RX_FIELDS.
type Blocker struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Blockers reports everything standing between the case and its next
// milestones. All six checks run regardless of current status; none
// short-circuits another. The report is advisory: it never gates a
// transition by itself.
func Blockers(r *Related) []Blocker {
	blockers := []Blocker{}

	if rx := r.Prescription; rx != nil {
		if missing := rx.MissingFields(); len(missing) > 0 {
			blockers = append(blockers, Blocker{
				Type:    BlockerMissingRxFields,
				Message: "Prescription missing: " + strings.Join(missing, ", "),
				Fields:  missing,
			})
		}
	} else {
		blockers = append(blockers, Blocker{
			Type:    BlockerMissingPrescription,
			Message: "No prescription attached to case.",
		})
	}

	if !r.HasInsurance {
		blockers = append(blockers, Blocker{
			Type:    BlockerMissingInsurance,
			Message: "No insurance information attached to case.",
		})
	}

	if r.Clearance == nil || r.Clearance.ClearedAt == nil {
		blockers = append(blockers, Blocker{
			Type:    BlockerFinancialNotCleared,
			Message: "Financial clearance not completed.",
		})
	}

	if !r.WelcomeCallDone {
		blockers = append(blockers, Blocker{
			Type:    BlockerWelcomeCallNotComplete,
			Message: "Welcome call not completed.",
		})
	}

	if !r.HasSchedule {
		blockers = append(blockers, Blocker{
			Type:    BlockerScheduleNotSet,
			Message: "Infusion not scheduled.",
		})
	}

	if r.PharmacyOrder == nil || r.PharmacyOrder.PushedAt == nil {
		blockers = append(blockers, Blocker{
			Type:    BlockerPharmacyNotPushed,
			Message: "Pharmacy order not pushed.",
		})
	}

	return blockers
}
