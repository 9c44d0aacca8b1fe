package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule maps to the schedules table: the single planned infusion
// appointment for a case.
type Schedule struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CaseID          uuid.UUID `db:"case_id" json:"case_id"`
	DateTime        time.Time `db:"date_time" json:"date_time"`
	Location        *string   `db:"location" json:"location,omitempty"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
