package members

import (
	"context"
	"fmt"
	"time"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, m Member) (*Member, error)
	Get(ctx context.Context, memberID string) (*Member, error)
	Update(ctx context.Context, memberID string, updates map[string]interface{}) (*Member, error)
	List(ctx context.Context, businessID, status string, limit int) ([]Member, error)
	FindByEmail(ctx context.Context, businessID, email string) (*Member, error)
	ChangeStatus(ctx context.Context, memberID string, change StatusChange) error
	StatusHistory(ctx context.Context, memberID string) ([]StatusChange, error)
}

// StaffChecker answers whether a user is staff of a business.
type StaffChecker interface {
	IsStaff(ctx context.Context, businessID, uid string) (bool, error)
}

type Service struct {
	store Store
	staff StaffChecker
}

func NewService(store Store, staff StaffChecker) *Service {
	return &Service{store: store, staff: staff}
}

func (s *Service) requireStaff(ctx context.Context, businessID, uid string) error {
	ok, err := s.staff.IsStaff(ctx, businessID, uid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: staff access required", ErrUnauthorized)
	}
	return nil
}

func (s *Service) Add(ctx context.Context, uid, businessID string, in AddMemberInput) (*Member, error) {
	in.Trim()
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Status == "" {
		in.Status = StatusTrial
	}
	if !IsValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrBadRequest, in.Status)
	}
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	if in.Email != "" {
		if _, err := s.store.FindByEmail(ctx, businessID, in.Email); err == nil {
			return nil, fmt.Errorf("%w: a member with this email already exists", ErrDuplicate)
		}
	}

	now := time.Now().UTC()
	return s.store.Create(ctx, Member{
		BusinessID:     businessID,
		UserUID:        in.UserUID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		MembershipType: in.MembershipType,
		Status:         in.Status,
		JoinedAt:       now,
		CreatedBy:      uid,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *Service) Get(ctx context.Context, uid, businessID, memberID string) (*Member, error) {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	m, err := s.store.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.BusinessID != businessID {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, uid, businessID, status string, limit int) ([]Member, error) {
	if status != "" && !IsValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrBadRequest, status)
	}
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	return s.store.List(ctx, businessID, status, limit)
}

func (s *Service) Update(ctx context.Context, uid, businessID, memberID string, in UpdateMemberInput) (*Member, error) {
	in.Trim()
	if _, err := s.Get(ctx, uid, businessID, memberID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrBadRequest)
		}
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.MembershipType != nil {
		updates["membershipType"] = *in.MembershipType
	}
	if in.PhotoURL != nil {
		updates["photoUrl"] = *in.PhotoURL
	}

	return s.store.Update(ctx, memberID, updates)
}

// ChangeStatus moves a member through the membership lifecycle and records
// the change in the member's history.
func (s *Service) ChangeStatus(ctx context.Context, uid, businessID, memberID string, in ChangeStatusInput) (*Member, error) {
	in.Trim()
	if !IsValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrBadRequest, in.Status)
	}

	m, err := s.Get(ctx, uid, businessID, memberID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(m.Status, in.Status) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrBadStatus, m.Status, in.Status)
	}

	change := StatusChange{
		From:      m.Status,
		To:        in.Status,
		ChangedBy: uid,
		ChangedAt: time.Now().UTC(),
		Note:      in.Note,
	}
	if err := s.store.ChangeStatus(ctx, memberID, change); err != nil {
		return nil, err
	}
	m.Status = in.Status
	return m, nil
}

func (s *Service) StatusHistory(ctx context.Context, uid, businessID, memberID string) ([]StatusChange, error) {
	if _, err := s.Get(ctx, uid, businessID, memberID); err != nil {
		return nil, err
	}
	return s.store.StatusHistory(ctx, memberID)
}
