package catalog

import (
	"context"
	"fmt"
	"time"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateClass(ctx context.Context, c GymClass) (*GymClass, error)
	GetClass(ctx context.Context, classID string) (*GymClass, error)
	UpdateClass(ctx context.Context, classID string, updates map[string]interface{}) (*GymClass, error)
	DeleteClass(ctx context.Context, classID string) error
	ListClasses(ctx context.Context, businessID, category string) ([]GymClass, error)
	CreateCategory(ctx context.Context, c Category) (*Category, error)
	ListCategories(ctx context.Context, businessID string) ([]Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
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

func validateClassFields(name string, duration, capacity int, color string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if len(name) > 120 {
		return fmt.Errorf("%w: name too long", ErrBadRequest)
	}
	if duration < 5 || duration > 600 {
		return fmt.Errorf("%w: durationMinutes must be between 5 and 600", ErrBadRequest)
	}
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrBadRequest)
	}
	if color != "" && !IsValidColor(color) {
		return fmt.Errorf("%w: color must be a #rrggbb value", ErrBadRequest)
	}
	return nil
}

func (s *Service) CreateClass(ctx context.Context, uid, businessID string, in CreateClassInput) (*GymClass, error) {
	in.Trim()
	if err := validateClassFields(in.Name, in.DurationMinutes, in.Capacity, in.Color); err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.store.CreateClass(ctx, GymClass{
		BusinessID:      businessID,
		Name:            in.Name,
		Description:     in.Description,
		Instructor:      in.Instructor,
		DurationMinutes: in.DurationMinutes,
		Capacity:        in.Capacity,
		Category:        in.Category,
		Color:           in.Color,
		Requirements:    in.Requirements,
		Active:          true,
		CreatedBy:       uid,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (s *Service) GetClass(ctx context.Context, uid, businessID, classID string) (*GymClass, error) {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	c, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if c.BusinessID != businessID {
		return nil, fmt.Errorf("%w: class not found", ErrNotFound)
	}
	return c, nil
}

func (s *Service) ListClasses(ctx context.Context, uid, businessID, category string) ([]GymClass, error) {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	return s.store.ListClasses(ctx, businessID, category)
}

func (s *Service) UpdateClass(ctx context.Context, uid, businessID, classID string, in UpdateClassInput) (*GymClass, error) {
	in.Trim()
	existing, err := s.GetClass(ctx, uid, businessID, classID)
	if err != nil {
		return nil, err
	}

	name := existing.Name
	duration := existing.DurationMinutes
	capacity := existing.Capacity
	color := existing.Color
	if in.Name != nil {
		name = *in.Name
	}
	if in.DurationMinutes != nil {
		duration = *in.DurationMinutes
	}
	if in.Capacity != nil {
		capacity = *in.Capacity
	}
	if in.Color != nil {
		color = *in.Color
	}
	if err := validateClassFields(name, duration, capacity, color); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Instructor != nil {
		updates["instructor"] = *in.Instructor
	}
	if in.DurationMinutes != nil {
		updates["durationMinutes"] = *in.DurationMinutes
	}
	if in.Capacity != nil {
		updates["capacity"] = *in.Capacity
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	if in.Requirements != nil {
		updates["requirements"] = *in.Requirements
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}

	return s.store.UpdateClass(ctx, classID, updates)
}

func (s *Service) DeleteClass(ctx context.Context, uid, businessID, classID string) error {
	if _, err := s.GetClass(ctx, uid, businessID, classID); err != nil {
		return err
	}
	return s.store.DeleteClass(ctx, classID)
}

func (s *Service) CreateCategory(ctx context.Context, uid, businessID string, in CreateCategoryInput) (*Category, error) {
	in.Trim()
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Color != "" && !IsValidColor(in.Color) {
		return nil, fmt.Errorf("%w: color must be a #rrggbb value", ErrBadRequest)
	}
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	existing, err := s.store.ListCategories(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Name == in.Name {
			return nil, fmt.Errorf("%w: category already exists", ErrDuplicate)
		}
	}

	return s.store.CreateCategory(ctx, Category{
		BusinessID: businessID,
		Name:       in.Name,
		Color:      in.Color,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *Service) ListCategories(ctx context.Context, uid, businessID string) ([]Category, error) {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, businessID)
}

func (s *Service) DeleteCategory(ctx context.Context, uid, businessID, categoryID string) error {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, categoryID)
}
