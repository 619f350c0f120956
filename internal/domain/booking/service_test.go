package booking

import (
	"context"
	"testing"
)

func TestCanBook(t *testing.T) {
	cases := []struct {
		name      string
		status    string
		booked    int
		capacity  int
		hasActive bool
		want      error
	}{
		{"open seat", "scheduled", 3, 10, false, nil},
		{"last seat", "scheduled", 9, 10, false, nil},
		{"full", "scheduled", 10, 10, false, ErrClassFull},
		{"over capacity", "scheduled", 11, 10, false, ErrClassFull},
		{"cancelled class", "cancelled", 0, 10, false, ErrClassCancelled},
		{"cancelled wins over full", "cancelled", 10, 10, false, ErrClassCancelled},
		{"duplicate", "scheduled", 3, 10, true, ErrAlreadyBooked},
		{"unlimited capacity", "scheduled", 500, 0, false, nil},
	}
	for _, tc := range cases {
		got := CanBook(tc.status, tc.booked, tc.capacity, tc.hasActive)
		if got != tc.want {
			t.Errorf("%s: CanBook = %v, want %v", tc.name, got, tc.want)
		}
	}
}

type mockLedger struct {
	bookFn    func(ctx context.Context, b Booking) (*Booking, error)
	cancelFn  func(ctx context.Context, bookingID, cancelledBy, reason string) (*Booking, error)
	getFn     func(ctx context.Context, bookingID string) (*Booking, error)
	listOccFn func(ctx context.Context, occurrenceID string, activeOnly bool) ([]Booking, error)
	listUsrFn func(ctx context.Context, businessID, userUID string, limit int) ([]Booking, error)
}

func (m *mockLedger) Book(ctx context.Context, b Booking) (*Booking, error) { return m.bookFn(ctx, b) }
func (m *mockLedger) Cancel(ctx context.Context, id, by, reason string) (*Booking, error) {
	return m.cancelFn(ctx, id, by, reason)
}
func (m *mockLedger) Get(ctx context.Context, id string) (*Booking, error) { return m.getFn(ctx, id) }
func (m *mockLedger) ListForOccurrence(ctx context.Context, id string, a bool) ([]Booking, error) {
	return m.listOccFn(ctx, id, a)
}
func (m *mockLedger) ListForUser(ctx context.Context, b, u string, l int) ([]Booking, error) {
	return m.listUsrFn(ctx, b, u, l)
}

type staffAlways bool

func (s staffAlways) IsStaff(ctx context.Context, businessID, uid string) (bool, error) {
	return bool(s), nil
}

func TestBookRequiresOccurrence(t *testing.T) {
	svc := NewService(&mockLedger{}, staffAlways(false))
	_, err := svc.Book(context.Background(), "u1", "biz1", BookInput{})
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestBookStampsCallerAndStatus(t *testing.T) {
	var got Booking
	svc := NewService(&mockLedger{
		bookFn: func(ctx context.Context, b Booking) (*Booking, error) {
			got = b
			b.ID = "b1"
			return &b, nil
		},
	}, staffAlways(false))

	_, err := svc.Book(context.Background(), "u1", "biz1", BookInput{OccurrenceID: " occ1 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserUID != "u1" || got.OccurrenceID != "occ1" || got.Status != StatusBooked {
		t.Errorf("booking = %+v", got)
	}
	if got.BookedAt.IsZero() {
		t.Error("bookedAt not set")
	}
}

func TestCancelOwnBooking(t *testing.T) {
	svc := NewService(&mockLedger{
		getFn: func(ctx context.Context, id string) (*Booking, error) {
			return &Booking{ID: id, BusinessID: "biz1", UserUID: "u1", Status: StatusBooked}, nil
		},
		cancelFn: func(ctx context.Context, id, by, reason string) (*Booking, error) {
			return &Booking{ID: id, Status: StatusCancelled, CancelledBy: by}, nil
		},
	}, staffAlways(false))

	b, err := svc.Cancel(context.Background(), "u1", "b1", "can't make it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != StatusCancelled || b.CancelledBy != "u1" {
		t.Errorf("booking = %+v", b)
	}
}

func TestCancelOthersBookingRequiresStaff(t *testing.T) {
	ledger := &mockLedger{
		getFn: func(ctx context.Context, id string) (*Booking, error) {
			return &Booking{ID: id, BusinessID: "biz1", UserUID: "someoneElse", Status: StatusBooked}, nil
		},
		cancelFn: func(ctx context.Context, id, by, reason string) (*Booking, error) {
			return &Booking{ID: id, Status: StatusCancelled, CancelledBy: by}, nil
		},
	}

	svc := NewService(ledger, staffAlways(false))
	if _, err := svc.Cancel(context.Background(), "u1", "b1", ""); !IsErrUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	svc = NewService(ledger, staffAlways(true))
	if _, err := svc.Cancel(context.Background(), "u1", "b1", "injury"); err != nil {
		t.Fatalf("staff should cancel any booking: %v", err)
	}
}

func TestListForOccurrenceRequiresStaff(t *testing.T) {
	svc := NewService(&mockLedger{
		listOccFn: func(ctx context.Context, id string, a bool) ([]Booking, error) {
			return []Booking{{ID: "b1"}}, nil
		},
	}, staffAlways(false))

	_, err := svc.ListForOccurrence(context.Background(), "u1", "biz1", "occ1", true)
	if !IsErrUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
