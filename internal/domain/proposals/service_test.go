package proposals

import (
	"context"
	"testing"

	"gymdesk/backend/internal/domain/clients"
	"gymdesk/backend/internal/domain/emails"
)

type mockStore struct {
	createFn func(ctx context.Context, p Proposal) (*Proposal, error)
	getFn    func(ctx context.Context, proposalID string) (*Proposal, error)
	updateFn func(ctx context.Context, proposalID string, updates map[string]interface{}) (*Proposal, error)
	deleteFn func(ctx context.Context, proposalID string) error
	listFn   func(ctx context.Context, userUID, status string, limit int) ([]Proposal, error)
}

func (m *mockStore) Create(ctx context.Context, p Proposal) (*Proposal, error) {
	return m.createFn(ctx, p)
}
func (m *mockStore) Get(ctx context.Context, id string) (*Proposal, error) { return m.getFn(ctx, id) }
func (m *mockStore) Update(ctx context.Context, id string, u map[string]interface{}) (*Proposal, error) {
	return m.updateFn(ctx, id, u)
}
func (m *mockStore) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }
func (m *mockStore) List(ctx context.Context, u, s string, l int) ([]Proposal, error) {
	return m.listFn(ctx, u, s, l)
}

type mockGen struct {
	completeFn func(ctx context.Context, system, user string) (string, error)
}

func (m *mockGen) Complete(ctx context.Context, system, user string) (string, error) {
	return m.completeFn(ctx, system, user)
}

type mockClients struct {
	getFn func(ctx context.Context, uid, clientID string) (*clients.Client, error)
}

func (m *mockClients) Get(ctx context.Context, uid, id string) (*clients.Client, error) {
	return m.getFn(ctx, uid, id)
}

type mockSender struct {
	sendFn func(ctx context.Context, uid string, in emails.SendInput) (*emails.SentEmail, error)
}

func (m *mockSender) Send(ctx context.Context, uid string, in emails.SendInput) (*emails.SentEmail, error) {
	return m.sendFn(ctx, uid, in)
}

func acmeClient() *clients.Client {
	return &clients.Client{
		ID: "cl1", UserUID: "u1", Name: "Acme Fitness",
		Email: "sales@acme.com", Company: "Acme Holdings", Status: clients.StatusLead,
	}
}

func TestParseDraft(t *testing.T) {
	sub, body := parseDraft(`{"subject":"Grow Acme","body":"Dear team,\nlet's talk."}`)
	if sub != "Grow Acme" || body != "Dear team,\nlet's talk." {
		t.Errorf("json parse: %q / %q", sub, body)
	}

	sub, body = parseDraft("```json\n{\"subject\":\"S\",\"body\":\"B\"}\n```")
	if sub != "S" || body != "B" {
		t.Errorf("fenced json parse: %q / %q", sub, body)
	}

	sub, body = parseDraft("A Great Offer\nHere is the pitch body.")
	if sub != "A Great Offer" || body != "Here is the pitch body." {
		t.Errorf("free text parse: %q / %q", sub, body)
	}

	sub, body = parseDraft("only one line")
	if sub != "" || body != "only one line" {
		t.Errorf("single line parse: %q / %q", sub, body)
	}
}

func TestGenerateCreatesDraft(t *testing.T) {
	var created Proposal
	svc := NewService(
		&mockStore{createFn: func(ctx context.Context, p Proposal) (*Proposal, error) {
			created = p
			p.ID = "p1"
			return &p, nil
		}},
		&mockGen{completeFn: func(ctx context.Context, system, user string) (string, error) {
			return `{"subject":"Partner with us","body":"Hello Acme."}`, nil
		}},
		&mockClients{getFn: func(ctx context.Context, uid, id string) (*clients.Client, error) {
			return acmeClient(), nil
		}},
		&mockSender{},
	)

	p, err := svc.Generate(context.Background(), "u1", GenerateInput{ClientID: "cl1", Goals: "more members"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusDraft {
		t.Errorf("status = %q", p.Status)
	}
	if created.Subject != "Partner with us" || created.ClientID != "cl1" || created.UserUID != "u1" {
		t.Errorf("created = %+v", created)
	}
}

func TestGenerateRequiresUsableContent(t *testing.T) {
	svc := NewService(
		&mockStore{},
		&mockGen{completeFn: func(ctx context.Context, system, user string) (string, error) {
			return "", nil
		}},
		&mockClients{getFn: func(ctx context.Context, uid, id string) (*clients.Client, error) {
			return acmeClient(), nil
		}},
		&mockSender{},
	)

	_, err := svc.Generate(context.Background(), "u1", GenerateInput{ClientID: "cl1"})
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestSendMarksProposalAndUsesIdempotencyKey(t *testing.T) {
	var sentInput emails.SendInput
	var updates map[string]interface{}
	svc := NewService(
		&mockStore{
			getFn: func(ctx context.Context, id string) (*Proposal, error) {
				return &Proposal{ID: id, UserUID: "u1", ClientID: "cl1", Subject: "S", Body: "B", Status: StatusDraft}, nil
			},
			updateFn: func(ctx context.Context, id string, u map[string]interface{}) (*Proposal, error) {
				updates = u
				return &Proposal{ID: id, Status: StatusSent}, nil
			},
		},
		&mockGen{},
		&mockClients{getFn: func(ctx context.Context, uid, id string) (*clients.Client, error) {
			return acmeClient(), nil
		}},
		&mockSender{sendFn: func(ctx context.Context, uid string, in emails.SendInput) (*emails.SentEmail, error) {
			sentInput = in
			return &emails.SentEmail{ID: "e1", DeliveryStatus: emails.DeliverySent}, nil
		}},
	)

	p, err := svc.Send(context.Background(), "u1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusSent {
		t.Errorf("status = %q", p.Status)
	}
	if sentInput.IdempotencyKey != "proposal:p1" {
		t.Errorf("idempotencyKey = %q", sentInput.IdempotencyKey)
	}
	if sentInput.To != "sales@acme.com" || sentInput.ProposalID != "p1" {
		t.Errorf("send input = %+v", sentInput)
	}
	if updates["sentEmailId"] != "e1" {
		t.Errorf("updates = %v", updates)
	}
}

func TestSendTwiceFails(t *testing.T) {
	svc := NewService(
		&mockStore{getFn: func(ctx context.Context, id string) (*Proposal, error) {
			return &Proposal{ID: id, UserUID: "u1", Status: StatusSent}, nil
		}},
		&mockGen{}, &mockClients{}, &mockSender{},
	)

	_, err := svc.Send(context.Background(), "u1", "p1")
	if !IsErrAlreadySent(err) {
		t.Fatalf("expected already sent, got %v", err)
	}
}

func TestSendRequiresClientEmail(t *testing.T) {
	noEmail := acmeClient()
	noEmail.Email = ""
	svc := NewService(
		&mockStore{getFn: func(ctx context.Context, id string) (*Proposal, error) {
			return &Proposal{ID: id, UserUID: "u1", ClientID: "cl1", Status: StatusDraft}, nil
		}},
		&mockGen{},
		&mockClients{getFn: func(ctx context.Context, uid, id string) (*clients.Client, error) {
			return noEmail, nil
		}},
		&mockSender{},
	)

	_, err := svc.Send(context.Background(), "u1", "p1")
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateRefusesSentProposal(t *testing.T) {
	svc := NewService(
		&mockStore{getFn: func(ctx context.Context, id string) (*Proposal, error) {
			return &Proposal{ID: id, UserUID: "u1", Status: StatusSent}, nil
		}},
		&mockGen{}, &mockClients{}, &mockSender{},
	)

	subject := "New subject"
	_, err := svc.Update(context.Background(), "u1", "p1", UpdateInput{Subject: &subject})
	if !IsErrAlreadySent(err) {
		t.Fatalf("expected already sent, got %v", err)
	}
}
