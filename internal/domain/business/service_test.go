package business

import (
	"context"
	"testing"
	"time"
)

type mockStore struct {
	createFn      func(ctx context.Context, b Business) (*Business, error)
	getFn         func(ctx context.Context, businessID string) (*Business, error)
	updateFn      func(ctx context.Context, businessID string, updates map[string]interface{}) (*Business, error)
	searchFn      func(ctx context.Context, q string, limit int64) ([]Business, error)
	listForUserFn func(ctx context.Context, uid string) ([]Business, error)
	putStaffFn    func(ctx context.Context, businessID string, sm StaffMember) error
	removeStaffFn func(ctx context.Context, businessID, uid string) error
}

func (m *mockStore) Create(ctx context.Context, b Business) (*Business, error) {
	return m.createFn(ctx, b)
}
func (m *mockStore) Get(ctx context.Context, businessID string) (*Business, error) {
	return m.getFn(ctx, businessID)
}
func (m *mockStore) Update(ctx context.Context, businessID string, updates map[string]interface{}) (*Business, error) {
	return m.updateFn(ctx, businessID, updates)
}
func (m *mockStore) SearchByNamePrefix(ctx context.Context, q string, limit int64) ([]Business, error) {
	return m.searchFn(ctx, q, limit)
}
func (m *mockStore) ListForUser(ctx context.Context, uid string) ([]Business, error) {
	return m.listForUserFn(ctx, uid)
}
func (m *mockStore) PutStaff(ctx context.Context, businessID string, sm StaffMember) error {
	return m.putStaffFn(ctx, businessID, sm)
}
func (m *mockStore) RemoveStaff(ctx context.Context, businessID, uid string) error {
	return m.removeStaffFn(ctx, businessID, uid)
}

func ownedBusiness(ownerUID string) *Business {
	return &Business{
		ID:          "biz1",
		CompanyName: "Iron Works Gym",
		OwnerUIDs:   []string{ownerUID},
		StaffMembers: []StaffMember{
			{UID: ownerUID, Role: RoleOwner},
			{UID: "trainer1", Role: RoleTrainer},
		},
		CreatedBy: ownerUID,
		CreatedAt: time.Now(),
	}
}

func TestCreateRequiresCompanyName(t *testing.T) {
	svc := NewService(&mockStore{})
	_, err := svc.Create(context.Background(), "u1", CreateBusinessInput{CompanyName: "   "})
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCreateSetsOwnerAndDerivedFields(t *testing.T) {
	var got Business
	svc := NewService(&mockStore{
		createFn: func(ctx context.Context, b Business) (*Business, error) {
			got = b
			b.ID = "new1"
			return &b, nil
		},
	})

	_, err := svc.Create(context.Background(), "u1", CreateBusinessInput{CompanyName: "  Iron Works Gym  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompanyName != "Iron Works Gym" {
		t.Errorf("companyName = %q", got.CompanyName)
	}
	if got.NameLower != "iron works gym" {
		t.Errorf("nameLower = %q", got.NameLower)
	}
	if got.Slug != "iron-works-gym" {
		t.Errorf("slug = %q", got.Slug)
	}
	if len(got.OwnerUIDs) != 1 || got.OwnerUIDs[0] != "u1" {
		t.Errorf("ownerUids = %v", got.OwnerUIDs)
	}
	if got.Plan != "free" {
		t.Errorf("plan = %q, want free", got.Plan)
	}
	if len(got.StaffMembers) != 1 || got.StaffMembers[0].Role != RoleOwner {
		t.Errorf("staffMembers = %v", got.StaffMembers)
	}
}

func TestGetRejectsNonMembers(t *testing.T) {
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Business, error) {
			return ownedBusiness("owner1"), nil
		},
	})

	if _, err := svc.Get(context.Background(), "stranger", "biz1"); !IsErrUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "trainer1", "biz1"); err != nil {
		t.Fatalf("staff should read the business: %v", err)
	}
}

func TestUpdateRequiresOwner(t *testing.T) {
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Business, error) {
			return ownedBusiness("owner1"), nil
		},
	})

	name := "New Name"
	_, err := svc.Update(context.Background(), "trainer1", "biz1", UpdateBusinessInput{CompanyName: &name})
	if !IsErrUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdateRecomputesNameLower(t *testing.T) {
	var gotUpdates map[string]interface{}
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Business, error) {
			return ownedBusiness("owner1"), nil
		},
		updateFn: func(ctx context.Context, id string, updates map[string]interface{}) (*Business, error) {
			gotUpdates = updates
			return ownedBusiness("owner1"), nil
		},
	})

	name := "  Strong Hold Gym  "
	if _, err := svc.Update(context.Background(), "owner1", "biz1", UpdateBusinessInput{CompanyName: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUpdates["nameLower"] != "strong hold gym" {
		t.Errorf("nameLower = %v", gotUpdates["nameLower"])
	}
	if gotUpdates["companyName"] != "Strong Hold Gym" {
		t.Errorf("companyName = %v", gotUpdates["companyName"])
	}
}

func TestAddStaffValidation(t *testing.T) {
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Business, error) {
			return ownedBusiness("owner1"), nil
		},
		putStaffFn: func(ctx context.Context, id string, sm StaffMember) error { return nil },
	})
	ctx := context.Background()

	err := svc.AddStaff(ctx, "owner1", "biz1", AddStaffInput{UID: "u9", Role: "janitor"})
	if !IsErrBadRequest(err) {
		t.Errorf("invalid role: expected bad request, got %v", err)
	}

	err = svc.AddStaff(ctx, "owner1", "biz1", AddStaffInput{UID: "trainer1", Role: RoleTrainer})
	if !IsErrDuplicate(err) {
		t.Errorf("existing uid: expected duplicate, got %v", err)
	}

	err = svc.AddStaff(ctx, "trainer1", "biz1", AddStaffInput{UID: "u9", Role: RoleTrainer})
	if !IsErrUnauthorized(err) {
		t.Errorf("non-owner: expected unauthorized, got %v", err)
	}

	err = svc.AddStaff(ctx, "owner1", "biz1", AddStaffInput{UID: "u9", Role: "  Trainer "})
	if err != nil {
		t.Errorf("role should be normalized: %v", err)
	}
}

func TestRemoveStaffProtectsOwners(t *testing.T) {
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Business, error) {
			return ownedBusiness("owner1"), nil
		},
		removeStaffFn: func(ctx context.Context, id, uid string) error { return nil },
	})

	err := svc.RemoveStaff(context.Background(), "owner1", "biz1", "owner1")
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request removing an owner, got %v", err)
	}
	if err := svc.RemoveStaff(context.Background(), "owner1", "biz1", "trainer1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
