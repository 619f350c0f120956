package members

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusTrial, StatusActive},
		{StatusTrial, StatusCancelled},
		{StatusActive, StatusPaused},
		{StatusActive, StatusCancelled},
		{StatusPaused, StatusActive},
		{StatusPaused, StatusCancelled},
		{StatusCancelled, StatusActive},
	}
	for _, p := range allowed {
		if !CanTransition(p[0], p[1]) {
			t.Errorf("%s -> %s should be allowed", p[0], p[1])
		}
	}

	denied := [][2]string{
		{StatusTrial, StatusPaused},
		{StatusPaused, StatusTrial},
		{StatusActive, StatusTrial},
		{StatusCancelled, StatusPaused},
		{StatusActive, StatusActive},
	}
	for _, p := range denied {
		if CanTransition(p[0], p[1]) {
			t.Errorf("%s -> %s should be denied", p[0], p[1])
		}
	}
}

type mockStore struct {
	createFn       func(ctx context.Context, m Member) (*Member, error)
	getFn          func(ctx context.Context, memberID string) (*Member, error)
	updateFn       func(ctx context.Context, memberID string, updates map[string]interface{}) (*Member, error)
	listFn         func(ctx context.Context, businessID, status string, limit int) ([]Member, error)
	findByEmailFn  func(ctx context.Context, businessID, email string) (*Member, error)
	changeStatusFn func(ctx context.Context, memberID string, change StatusChange) error
	historyFn      func(ctx context.Context, memberID string) ([]StatusChange, error)
}

func (m *mockStore) Create(ctx context.Context, mm Member) (*Member, error) {
	return m.createFn(ctx, mm)
}
func (m *mockStore) Get(ctx context.Context, id string) (*Member, error) { return m.getFn(ctx, id) }
func (m *mockStore) Update(ctx context.Context, id string, u map[string]interface{}) (*Member, error) {
	return m.updateFn(ctx, id, u)
}
func (m *mockStore) List(ctx context.Context, b, s string, l int) ([]Member, error) {
	return m.listFn(ctx, b, s, l)
}
func (m *mockStore) FindByEmail(ctx context.Context, b, e string) (*Member, error) {
	return m.findByEmailFn(ctx, b, e)
}
func (m *mockStore) ChangeStatus(ctx context.Context, id string, c StatusChange) error {
	return m.changeStatusFn(ctx, id, c)
}
func (m *mockStore) StatusHistory(ctx context.Context, id string) ([]StatusChange, error) {
	return m.historyFn(ctx, id)
}

type staffAlways bool

func (s staffAlways) IsStaff(ctx context.Context, businessID, uid string) (bool, error) {
	return bool(s), nil
}

func TestAddRejectsNonStaff(t *testing.T) {
	svc := NewService(&mockStore{}, staffAlways(false))
	_, err := svc.Add(context.Background(), "u1", "biz1", AddMemberInput{Name: "Alice"})
	if !IsErrUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAddDefaultsToTrialAndChecksDuplicateEmail(t *testing.T) {
	store := &mockStore{
		findByEmailFn: func(ctx context.Context, b, e string) (*Member, error) {
			if e == "taken@example.com" {
				return &Member{ID: "m1", Email: e}, nil
			}
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		},
		createFn: func(ctx context.Context, m Member) (*Member, error) {
			m.ID = "m2"
			return &m, nil
		},
	}
	svc := NewService(store, staffAlways(true))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "biz1", AddMemberInput{Name: "Bob", Email: "taken@example.com"})
	if !IsErrDuplicate(err) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	m, err := svc.Add(ctx, "u1", "biz1", AddMemberInput{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != StatusTrial {
		t.Errorf("status = %q, want trial", m.Status)
	}
	if m.BusinessID != "biz1" || m.CreatedBy != "u1" {
		t.Errorf("member = %+v", m)
	}
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	var gotChange StatusChange
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Member, error) {
			return &Member{ID: id, BusinessID: "biz1", Status: StatusTrial, JoinedAt: time.Now()}, nil
		},
		changeStatusFn: func(ctx context.Context, id string, c StatusChange) error {
			gotChange = c
			return nil
		},
	}
	svc := NewService(store, staffAlways(true))

	m, err := svc.ChangeStatus(context.Background(), "staff1", "biz1", "m1", ChangeStatusInput{Status: "active", Note: "signed up"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != StatusActive {
		t.Errorf("status = %q", m.Status)
	}
	if gotChange.From != StatusTrial || gotChange.To != StatusActive || gotChange.ChangedBy != "staff1" {
		t.Errorf("change = %+v", gotChange)
	}
}

func TestChangeStatusRejectsInvalidTransition(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Member, error) {
			return &Member{ID: id, BusinessID: "biz1", Status: StatusTrial}, nil
		},
	}
	svc := NewService(store, staffAlways(true))

	_, err := svc.ChangeStatus(context.Background(), "staff1", "biz1", "m1", ChangeStatusInput{Status: "paused"})
	if !IsErrBadStatus(err) {
		t.Fatalf("expected bad status, got %v", err)
	}
}

func TestGetScopedToBusiness(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Member, error) {
			return &Member{ID: id, BusinessID: "otherBiz", Status: StatusActive}, nil
		},
	}
	svc := NewService(store, staffAlways(true))

	_, err := svc.Get(context.Background(), "staff1", "biz1", "m1")
	if !IsErrNotFound(err) {
		t.Fatalf("expected not found for cross-tenant read, got %v", err)
	}
}
