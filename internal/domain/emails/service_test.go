package emails

import (
	"context"
	"fmt"
	"testing"

	"gymdesk/backend/internal/mailer"
)

type mockStore struct {
	created []SentEmail

	createFn    func(ctx context.Context, e SentEmail) (*SentEmail, error)
	getFn       func(ctx context.Context, emailID string) (*SentEmail, error)
	findByKeyFn func(ctx context.Context, userUID, key string) (*SentEmail, error)
	findTokenFn func(ctx context.Context, token string) (*SentEmail, error)
	incrOpenFn  func(ctx context.Context, emailID string, firstOpen bool) error
	listFn      func(ctx context.Context, userUID string, limit int) ([]SentEmail, error)
}

func (m *mockStore) Create(ctx context.Context, e SentEmail) (*SentEmail, error) {
	m.created = append(m.created, e)
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	e.ID = fmt.Sprintf("e%d", len(m.created))
	return &e, nil
}
func (m *mockStore) Get(ctx context.Context, id string) (*SentEmail, error) {
	return m.getFn(ctx, id)
}
func (m *mockStore) FindByIdempotencyKey(ctx context.Context, u, k string) (*SentEmail, error) {
	if m.findByKeyFn != nil {
		return m.findByKeyFn(ctx, u, k)
	}
	return nil, fmt.Errorf("%w: email not found", ErrNotFound)
}
func (m *mockStore) FindByOpenToken(ctx context.Context, t string) (*SentEmail, error) {
	return m.findTokenFn(ctx, t)
}
func (m *mockStore) IncrementOpen(ctx context.Context, id string, first bool) error {
	return m.incrOpenFn(ctx, id, first)
}
func (m *mockStore) List(ctx context.Context, u string, l int) ([]SentEmail, error) {
	return m.listFn(ctx, u, l)
}

func quietMailer() *mailer.ConsoleService {
	m := mailer.NewConsoleService()
	m.Silent = true
	return m
}

func TestSendValidation(t *testing.T) {
	svc := NewService(&mockStore{}, quietMailer(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SendInput
	}{
		{"missing to", SendInput{Subject: "Hi", Body: "x"}},
		{"bad to", SendInput{To: "nope", Subject: "Hi", Body: "x"}},
		{"missing subject", SendInput{To: "a@b.com", Body: "x"}},
		{"missing body", SendInput{To: "a@b.com", Subject: "Hi"}},
	}
	for _, tc := range cases {
		if _, err := svc.Send(ctx, "u1", tc.in); !IsErrBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestSendRecordsExactlyOneEntry(t *testing.T) {
	store := &mockStore{}
	mails := quietMailer()
	svc := NewService(store, mails, nil)

	e, err := svc.Send(context.Background(), "u1", SendInput{
		To: "a@b.com", Subject: "Hello", Body: "Hi there",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(store.created))
	}
	if e.DeliveryStatus != DeliverySent {
		t.Errorf("deliveryStatus = %q", e.DeliveryStatus)
	}
	if e.OpenToken == "" {
		t.Error("openToken not set")
	}
	if got := len(mails.Sent()); got != 1 {
		t.Errorf("delivered %d mails", got)
	}
}

func TestSendFailureStillRecordsAndReports(t *testing.T) {
	store := &mockStore{}
	mails := quietMailer()
	mails.FailAll = true
	svc := NewService(store, mails, nil)

	_, err := svc.Send(context.Background(), "u1", SendInput{
		To: "a@b.com", Subject: "Hello", Body: "Hi there",
	})
	if !IsErrDeliveryFailed(err) {
		t.Fatalf("expected delivery failed, got %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(store.created))
	}
	if store.created[0].DeliveryStatus != DeliveryFailed {
		t.Errorf("deliveryStatus = %q", store.created[0].DeliveryStatus)
	}
}

func TestSendDeduplicatesByIdempotencyKey(t *testing.T) {
	prior := &SentEmail{ID: "e1", UserUID: "u1", Subject: "Hello", DeliveryStatus: DeliverySent, IdempotencyKey: "k1"}
	store := &mockStore{
		findByKeyFn: func(ctx context.Context, u, k string) (*SentEmail, error) {
			if k == "k1" {
				return prior, nil
			}
			return nil, fmt.Errorf("%w: email not found", ErrNotFound)
		},
	}
	mails := quietMailer()
	svc := NewService(store, mails, nil)

	e, err := svc.Send(context.Background(), "u1", SendInput{
		To: "a@b.com", Subject: "Hello", Body: "Hi", IdempotencyKey: "k1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "e1" {
		t.Errorf("expected prior entry, got %+v", e)
	}
	if len(store.created) != 0 || len(mails.Sent()) != 0 {
		t.Error("duplicate send must not deliver or record again")
	}
}

type touchRecorder struct {
	touched []string
}

func (r *touchRecorder) TouchLastContact(ctx context.Context, uid, clientID string) error {
	r.touched = append(r.touched, clientID)
	return nil
}

func TestSendTouchesClientContact(t *testing.T) {
	touch := &touchRecorder{}
	svc := NewService(&mockStore{}, quietMailer(), touch)

	_, err := svc.Send(context.Background(), "u1", SendInput{
		To: "a@b.com", Subject: "Hello", Body: "Hi", ClientID: "cl1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(touch.touched) != 1 || touch.touched[0] != "cl1" {
		t.Errorf("touched = %v", touch.touched)
	}
}

func TestTrackOpen(t *testing.T) {
	var incremented string
	var first bool
	store := &mockStore{
		findTokenFn: func(ctx context.Context, token string) (*SentEmail, error) {
			if token == "tok1" {
				return &SentEmail{ID: "e1", OpenCount: 0}, nil
			}
			return nil, fmt.Errorf("%w: email not found", ErrNotFound)
		},
		incrOpenFn: func(ctx context.Context, id string, f bool) error {
			incremented, first = id, f
			return nil
		},
	}
	svc := NewService(store, quietMailer(), nil)
	ctx := context.Background()

	svc.TrackOpen(ctx, "tok1")
	if incremented != "e1" || !first {
		t.Errorf("incremented = %q, first = %v", incremented, first)
	}

	// Unknown token is a no-op.
	incremented = ""
	svc.TrackOpen(ctx, "nope")
	if incremented != "" {
		t.Error("unknown token must not increment anything")
	}
}
