package business

import (
	"context"
	"fmt"
	"time"

	"gymdesk/backend/internal/utils"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, b Business) (*Business, error)
	Get(ctx context.Context, businessID string) (*Business, error)
	Update(ctx context.Context, businessID string, updates map[string]interface{}) (*Business, error)
	SearchByNamePrefix(ctx context.Context, q string, limit int64) ([]Business, error)
	ListForUser(ctx context.Context, uid string) ([]Business, error)
	PutStaff(ctx context.Context, businessID string, sm StaffMember) error
	RemoveStaff(ctx context.Context, businessID, uid string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, uid string, in CreateBusinessInput) (*Business, error) {
	in.Trim()
	if in.CompanyName == "" {
		return nil, fmt.Errorf("%w: companyName is required", ErrBadRequest)
	}
	if len(in.CompanyName) > 200 {
		return nil, fmt.Errorf("%w: companyName too long", ErrBadRequest)
	}

	now := time.Now().UTC()
	b := Business{
		CompanyName:   in.CompanyName,
		NameLower:     utils.NormalizeNameLower(in.CompanyName),
		Slug:          utils.Slugify(in.CompanyName),
		CompanyNumber: in.CompanyNumber,
		Email:         in.Email,
		Phone:         in.Phone,
		Website:       in.Website,
		Address:       in.Address,
		OwnerUIDs:     []string{uid},
		StaffMembers: []StaffMember{{
			UID:     uid,
			Role:    RoleOwner,
			AddedBy: uid,
			AddedAt: now,
		}},
		Plan:      "free",
		CreatedBy: uid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.store.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, uid, businessID string) (*Business, error) {
	b, err := s.store.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !b.IsStaff(uid) {
		return nil, fmt.Errorf("%w: not a member of this business", ErrUnauthorized)
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, uid string) ([]Business, error) {
	return s.store.ListForUser(ctx, uid)
}

func (s *Service) Search(ctx context.Context, q string, limit int64) ([]Business, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.store.SearchByNamePrefix(ctx, q, limit)
}

func (s *Service) Update(ctx context.Context, uid, businessID string, in UpdateBusinessInput) (*Business, error) {
	in.Trim()

	b, err := s.store.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !b.IsOwner(uid) {
		return nil, fmt.Errorf("%w: only an owner can update the business", ErrUnauthorized)
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if in.CompanyName != nil {
		if *in.CompanyName == "" {
			return nil, fmt.Errorf("%w: companyName cannot be empty", ErrBadRequest)
		}
		updates["companyName"] = *in.CompanyName
		updates["nameLower"] = utils.NormalizeNameLower(*in.CompanyName)
		updates["slug"] = utils.Slugify(*in.CompanyName)
	}
	if in.CompanyNumber != nil {
		updates["companyNumber"] = *in.CompanyNumber
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}

	return s.store.Update(ctx, businessID, updates)
}

func (s *Service) AddStaff(ctx context.Context, uid, businessID string, in AddStaffInput) error {
	in.Trim()
	if in.UID == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if !IsValidStaffRole(in.Role) {
		return fmt.Errorf("%w: invalid role %q", ErrBadRequest, in.Role)
	}

	b, err := s.store.Get(ctx, businessID)
	if err != nil {
		return err
	}
	if !b.IsOwner(uid) {
		return fmt.Errorf("%w: only an owner can manage staff", ErrUnauthorized)
	}
	for _, sm := range b.StaffMembers {
		if sm.UID == in.UID {
			return fmt.Errorf("%w: staff member already exists", ErrDuplicate)
		}
	}

	return s.store.PutStaff(ctx, businessID, StaffMember{
		UID:     in.UID,
		Name:    in.Name,
		Email:   in.Email,
		Role:    in.Role,
		AddedBy: uid,
		AddedAt: time.Now().UTC(),
	})
}

func (s *Service) UpdateStaffRole(ctx context.Context, uid, businessID, staffUID, role string) error {
	if !IsValidStaffRole(role) {
		return fmt.Errorf("%w: invalid role %q", ErrBadRequest, role)
	}

	b, err := s.store.Get(ctx, businessID)
	if err != nil {
		return err
	}
	if !b.IsOwner(uid) {
		return fmt.Errorf("%w: only an owner can manage staff", ErrUnauthorized)
	}

	for _, sm := range b.StaffMembers {
		if sm.UID == staffUID {
			sm.Role = role
			return s.store.PutStaff(ctx, businessID, sm)
		}
	}
	return fmt.Errorf("%w: staff member not found", ErrNotFound)
}

func (s *Service) RemoveStaff(ctx context.Context, uid, businessID, staffUID string) error {
	b, err := s.store.Get(ctx, businessID)
	if err != nil {
		return err
	}
	if !b.IsOwner(uid) {
		return fmt.Errorf("%w: only an owner can manage staff", ErrUnauthorized)
	}
	if b.IsOwner(staffUID) {
		return fmt.Errorf("%w: cannot remove an owner", ErrBadRequest)
	}
	return s.store.RemoveStaff(ctx, businessID, staffUID)
}
