package admin

import (
	"time"

	"github.com/google/uuid"
)

// OrgType classifies the party an organization represents.
type OrgType string

const (
	OrgTypeProvider OrgType = "PROVIDER_ORG"
	OrgTypeInfusion OrgType = "INFUSION_ORG"
	OrgTypePharmacy OrgType = "PHARMACY_ORG"
)

var validOrgTypes = map[OrgType]bool{
	OrgTypeProvider: true,
	OrgTypeInfusion: true,
	OrgTypePharmacy: true,
}

func (t OrgType) Valid() bool { return validOrgTypes[t] }

// UserRole mirrors the role claim in tokens.
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleProvider      UserRole = "PROVIDER"
	RoleInfusionAdmin UserRole = "INFUSION_ADMIN"
	RolePharmacy      UserRole = "PHARMACY"
)

var validUserRoles = map[UserRole]bool{
	RoleAdmin:         true,
	RoleProvider:      true,
	RoleInfusionAdmin: true,
	RolePharmacy:      true,
}

func (r UserRole) Valid() bool { return validUserRoles[r] }

type Organization struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      OrgType   `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is an operator account. Tokens are issued by an external identity
// provider; this record backs actor and org foreign keys.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	OrgID        *uuid.UUID `db:"org_id" json:"org_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
