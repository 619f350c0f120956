package clients

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type mockStore struct {
	createFn      func(ctx context.Context, c Client) (*Client, error)
	getFn         func(ctx context.Context, clientID string) (*Client, error)
	updateFn      func(ctx context.Context, clientID string, updates map[string]interface{}) (*Client, error)
	deleteFn      func(ctx context.Context, clientID string) error
	findByEmailFn func(ctx context.Context, userUID, email string) (*Client, error)
	listPageFn    func(ctx context.Context, userUID string, q ListQuery) (*ClientPage, error)
	listAllFn     func(ctx context.Context, userUID string) ([]Client, error)
	touchFn       func(ctx context.Context, clientID string, at time.Time) error
}

func (m *mockStore) Create(ctx context.Context, c Client) (*Client, error) {
	return m.createFn(ctx, c)
}
func (m *mockStore) Get(ctx context.Context, id string) (*Client, error) { return m.getFn(ctx, id) }
func (m *mockStore) Update(ctx context.Context, id string, u map[string]interface{}) (*Client, error) {
	return m.updateFn(ctx, id, u)
}
func (m *mockStore) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }
func (m *mockStore) FindByEmail(ctx context.Context, u, e string) (*Client, error) {
	return m.findByEmailFn(ctx, u, e)
}
func (m *mockStore) ListPage(ctx context.Context, u string, q ListQuery) (*ClientPage, error) {
	return m.listPageFn(ctx, u, q)
}
func (m *mockStore) ListAll(ctx context.Context, u string) ([]Client, error) {
	return m.listAllFn(ctx, u)
}
func (m *mockStore) TouchLastContact(ctx context.Context, id string, at time.Time) error {
	return m.touchFn(ctx, id, at)
}

func notFoundByEmail(ctx context.Context, u, e string) (*Client, error) {
	return nil, fmt.Errorf("%w: client not found", ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&mockStore{findByEmailFn: notFoundByEmail})
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateClientInput
	}{
		{"missing name", CreateClientInput{Email: "a@b.com"}},
		{"bad email", CreateClientInput{Name: "Acme", Email: "not-an-email"}},
		{"bad website", CreateClientInput{Name: "Acme", Website: "not a url"}},
		{"bad status", CreateClientInput{Name: "Acme", Status: "customer"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, "u1", tc.in); !IsErrBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestCreateDefaultsAndTokens(t *testing.T) {
	var got Client
	svc := NewService(&mockStore{
		findByEmailFn: notFoundByEmail,
		createFn: func(ctx context.Context, c Client) (*Client, error) {
			got = c
			c.ID = "cl1"
			return &c, nil
		},
	})

	_, err := svc.Create(context.Background(), "u1", CreateClientInput{
		Name:  "  Acme Fitness  ",
		Email: "Sales@Acme.COM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusLead {
		t.Errorf("status = %q, want lead", got.Status)
	}
	if got.Email != "sales@acme.com" {
		t.Errorf("email should be lowercased, got %q", got.Email)
	}
	if len(got.SearchTokens) == 0 {
		t.Error("searchTokens not populated")
	}
	if got.UserUID != "u1" {
		t.Errorf("userUid = %q", got.UserUID)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(&mockStore{
		findByEmailFn: func(ctx context.Context, u, e string) (*Client, error) {
			return &Client{ID: "cl1", Email: e}, nil
		},
	})

	_, err := svc.Create(context.Background(), "u1", CreateClientInput{Name: "Acme", Email: "a@b.com"})
	if !IsErrDuplicate(err) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	svc := NewService(&mockStore{
		getFn: func(ctx context.Context, id string) (*Client, error) {
			return &Client{ID: id, UserUID: "someoneElse"}, nil
		},
	})

	if _, err := svc.Get(context.Background(), "u1", "cl1"); !IsErrNotFound(err) {
		t.Fatalf("expected not found for another user's client, got %v", err)
	}
}

func TestFilterClients(t *testing.T) {
	cs := []Client{
		{ID: "1", Name: "Acme Fitness", Email: "sales@acme.com", Status: StatusLead},
		{ID: "2", Name: "Beta Gym", Company: "Beta Holdings", Status: StatusClient},
		{ID: "3", Name: "Gamma Wellness", Email: "hi@gamma.io", Status: StatusLead},
	}

	got := filterClients(cs, StatusLead, "")
	if len(got) != 2 {
		t.Errorf("status filter: got %d clients", len(got))
	}

	got = filterClients(cs, "", "beta")
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("search filter: got %v", got)
	}

	got = filterClients(cs, StatusLead, "GAMMA")
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("combined filter: got %v", got)
	}

	if got = filterClients(cs, "", "zzz"); len(got) != 0 {
		t.Errorf("no-match search: got %v", got)
	}
}

func TestListWithSearchUsesInMemoryScan(t *testing.T) {
	listAllCalled := false
	svc := NewService(&mockStore{
		listAllFn: func(ctx context.Context, u string) ([]Client, error) {
			listAllCalled = true
			return []Client{{ID: "1", Name: "Acme", UserUID: u, Status: StatusLead}}, nil
		},
		listPageFn: func(ctx context.Context, u string, q ListQuery) (*ClientPage, error) {
			t.Fatal("paged listing should not be used with a search term")
			return nil, nil
		},
	})

	page, err := svc.List(context.Background(), "u1", ListQuery{Search: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !listAllCalled || len(page.Clients) != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestUpdateRecomputesTokensOnlyWhenNeeded(t *testing.T) {
	var gotUpdates map[string]interface{}
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Client, error) {
			return &Client{ID: id, UserUID: "u1", Name: "Acme", Email: "a@b.com"}, nil
		},
		updateFn: func(ctx context.Context, id string, u map[string]interface{}) (*Client, error) {
			gotUpdates = u
			return &Client{ID: id}, nil
		},
	}
	svc := NewService(store)
	ctx := context.Background()

	notes := "met at expo"
	if _, err := svc.Update(ctx, "u1", "cl1", UpdateClientInput{Notes: &notes}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotUpdates["searchTokens"]; ok {
		t.Error("notes-only update should not rewrite searchTokens")
	}

	name := "Acme Wellness"
	if _, err := svc.Update(ctx, "u1", "cl1", UpdateClientInput{Name: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotUpdates["searchTokens"]; !ok {
		t.Error("name update should rewrite searchTokens")
	}
}
