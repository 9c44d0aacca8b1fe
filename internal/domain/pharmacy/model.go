package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// FulfillmentStatus tracks the specialty pharmacy's progress on a pushed order.
type FulfillmentStatus string

const (
	FulfillmentNotStarted FulfillmentStatus = "NOT_STARTED"
	FulfillmentInProgress FulfillmentStatus = "IN_PROGRESS"
	FulfillmentReady      FulfillmentStatus = "READY"
	FulfillmentShipped    FulfillmentStatus = "SHIPPED"
	FulfillmentReceived   FulfillmentStatus = "RECEIVED"
)

var validFulfillmentStatuses = map[FulfillmentStatus]bool{
	FulfillmentNotStarted: true,
	FulfillmentInProgress: true,
	FulfillmentReady:      true,
	FulfillmentShipped:    true,
	FulfillmentReceived:   true,
}

// Valid reports whether s is a member of the fulfillment status enum.
func (s FulfillmentStatus) Valid() bool { return validFulfillmentStatuses[s] }

// Order maps to the pharmacy_orders table. At most one order exists per case.
type Order struct {
	ID                   uuid.UUID         `db:"id" json:"id"`
	CaseID               uuid.UUID         `db:"case_id" json:"case_id"`
	PushedAt             *time.Time        `db:"pushed_at" json:"pushed_at,omitempty"`
	ShipTo               *string           `db:"ship_to" json:"ship_to,omitempty"`
	RequestedArrivalDate *time.Time        `db:"requested_arrival_date" json:"requested_arrival_date,omitempty"`
	FulfillmentStatus    FulfillmentStatus `db:"fulfillment_status" json:"fulfillment_status"`
	PharmacyNotes        *string           `db:"pharmacy_notes" json:"pharmacy_notes,omitempty"`
	NDC                  *string           `db:"ndc" json:"ndc,omitempty"`
	Lot                  *string           `db:"lot" json:"lot,omitempty"`
	ExpirationDate       *time.Time        `db:"expiration_date" json:"expiration_date,omitempty"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}
