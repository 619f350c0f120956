package catalog

import (
	"context"
	"testing"
)

type mockStore struct {
	createClassFn    func(ctx context.Context, c GymClass) (*GymClass, error)
	getClassFn       func(ctx context.Context, classID string) (*GymClass, error)
	updateClassFn    func(ctx context.Context, classID string, updates map[string]interface{}) (*GymClass, error)
	deleteClassFn    func(ctx context.Context, classID string) error
	listClassesFn    func(ctx context.Context, businessID, category string) ([]GymClass, error)
	createCategoryFn func(ctx context.Context, c Category) (*Category, error)
	listCategoriesFn func(ctx context.Context, businessID string) ([]Category, error)
	deleteCategoryFn func(ctx context.Context, categoryID string) error
}

func (m *mockStore) CreateClass(ctx context.Context, c GymClass) (*GymClass, error) {
	return m.createClassFn(ctx, c)
}
func (m *mockStore) GetClass(ctx context.Context, id string) (*GymClass, error) {
	return m.getClassFn(ctx, id)
}
func (m *mockStore) UpdateClass(ctx context.Context, id string, u map[string]interface{}) (*GymClass, error) {
	return m.updateClassFn(ctx, id, u)
}
func (m *mockStore) DeleteClass(ctx context.Context, id string) error { return m.deleteClassFn(ctx, id) }
func (m *mockStore) ListClasses(ctx context.Context, b, c string) ([]GymClass, error) {
	return m.listClassesFn(ctx, b, c)
}
func (m *mockStore) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	return m.createCategoryFn(ctx, c)
}
func (m *mockStore) ListCategories(ctx context.Context, b string) ([]Category, error) {
	return m.listCategoriesFn(ctx, b)
}
func (m *mockStore) DeleteCategory(ctx context.Context, id string) error {
	return m.deleteCategoryFn(ctx, id)
}

type staffAlways bool

func (s staffAlways) IsStaff(ctx context.Context, businessID, uid string) (bool, error) {
	return bool(s), nil
}

func TestIsValidColor(t *testing.T) {
	good := []string{"#ffffff", "#000000", "#A1b2C3"}
	for _, c := range good {
		if !IsValidColor(c) {
			t.Errorf("%q should be valid", c)
		}
	}
	bad := []string{"ffffff", "#fff", "#gggggg", "#1234567", ""}
	for _, c := range bad {
		if IsValidColor(c) {
			t.Errorf("%q should be invalid", c)
		}
	}
}

func TestCreateClassValidation(t *testing.T) {
	svc := NewService(&mockStore{}, staffAlways(true))
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateClassInput
	}{
		{"empty name", CreateClassInput{DurationMinutes: 60, Capacity: 10}},
		{"zero capacity", CreateClassInput{Name: "Yoga", DurationMinutes: 60, Capacity: 0}},
		{"too short", CreateClassInput{Name: "Yoga", DurationMinutes: 3, Capacity: 10}},
		{"bad color", CreateClassInput{Name: "Yoga", DurationMinutes: 60, Capacity: 10, Color: "blue"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateClass(ctx, "u1", "biz1", tc.in); !IsErrBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestCreateClassDefaultsActive(t *testing.T) {
	var got GymClass
	svc := NewService(&mockStore{
		createClassFn: func(ctx context.Context, c GymClass) (*GymClass, error) {
			got = c
			c.ID = "c1"
			return &c, nil
		},
	}, staffAlways(true))

	_, err := svc.CreateClass(context.Background(), "u1", "biz1", CreateClassInput{
		Name: "  Spin  ", DurationMinutes: 45, Capacity: 20, Color: "#FF8800",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Active {
		t.Error("new class should be active")
	}
	if got.Name != "Spin" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Color != "#ff8800" {
		t.Errorf("color should be lowercased, got %q", got.Color)
	}
}

func TestUpdateClassRevalidatesMergedFields(t *testing.T) {
	svc := NewService(&mockStore{
		getClassFn: func(ctx context.Context, id string) (*GymClass, error) {
			return &GymClass{ID: id, BusinessID: "biz1", Name: "Spin", DurationMinutes: 45, Capacity: 20}, nil
		},
	}, staffAlways(true))

	zero := 0
	_, err := svc.UpdateClass(context.Background(), "u1", "biz1", "c1", UpdateClassInput{Capacity: &zero})
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request for zero capacity, got %v", err)
	}
}

func TestClassScopedToBusiness(t *testing.T) {
	svc := NewService(&mockStore{
		getClassFn: func(ctx context.Context, id string) (*GymClass, error) {
			return &GymClass{ID: id, BusinessID: "otherBiz", Name: "Spin", DurationMinutes: 45, Capacity: 20}, nil
		},
	}, staffAlways(true))

	if _, err := svc.GetClass(context.Background(), "u1", "biz1", "c1"); !IsErrNotFound(err) {
		t.Fatalf("expected not found for cross-tenant read, got %v", err)
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc := NewService(&mockStore{
		listCategoriesFn: func(ctx context.Context, b string) ([]Category, error) {
			return []Category{{ID: "cat1", Name: "Cardio"}}, nil
		},
	}, staffAlways(true))

	_, err := svc.CreateCategory(context.Background(), "u1", "biz1", CreateCategoryInput{Name: "Cardio"})
	if !IsErrDuplicate(err) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}
