package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	orgs  OrganizationRepository
	users UserRepository
}

func NewService(orgs OrganizationRepository, users UserRepository) *Service {
	return &Service{orgs: orgs, users: users}
}

func (s *Service) CreateOrganization(ctx context.Context, o *Organization) error {
	if o.Name == "" {
		return fmt.Errorf("organization name is required")
	}
	if !o.Type.Valid() {
		return fmt.Errorf("invalid organization type %q", o.Type)
	}
	return s.orgs.Create(ctx, o)
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context, orgType *OrgType, limit, offset int) ([]*Organization, int, error) {
	if orgType != nil && !orgType.Valid() {
		return nil, 0, fmt.Errorf("invalid organization type %q", *orgType)
	}
	return s.orgs.List(ctx, orgType, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}
