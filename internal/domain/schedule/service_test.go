package schedule

import (
	"context"
	"testing"

	"gymdesk/backend/internal/domain/booking"
	"gymdesk/backend/internal/domain/catalog"
	"gymdesk/backend/internal/mailer"
)

type mockStore struct {
	createFn        func(ctx context.Context, o Occurrence) (*Occurrence, error)
	getFn           func(ctx context.Context, occurrenceID string) (*Occurrence, error)
	updateFn        func(ctx context.Context, occurrenceID string, updates map[string]interface{}) (*Occurrence, error)
	deleteFn        func(ctx context.Context, occurrenceID string) error
	listRangeFn     func(ctx context.Context, businessID, fromDate, toDate string) ([]Occurrence, error)
	cancelCascadeFn func(ctx context.Context, occurrenceID, cancelledBy, reason string) ([]booking.Booking, error)
	setSpotsFn      func(ctx context.Context, occurrenceID string, n int) error
}

func (m *mockStore) Create(ctx context.Context, o Occurrence) (*Occurrence, error) {
	return m.createFn(ctx, o)
}
func (m *mockStore) Get(ctx context.Context, id string) (*Occurrence, error) {
	return m.getFn(ctx, id)
}
func (m *mockStore) Update(ctx context.Context, id string, u map[string]interface{}) (*Occurrence, error) {
	return m.updateFn(ctx, id, u)
}
func (m *mockStore) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }
func (m *mockStore) ListRange(ctx context.Context, b, f, t string) ([]Occurrence, error) {
	return m.listRangeFn(ctx, b, f, t)
}
func (m *mockStore) CancelCascade(ctx context.Context, id, by, reason string) ([]booking.Booking, error) {
	return m.cancelCascadeFn(ctx, id, by, reason)
}
func (m *mockStore) SetBookedSpots(ctx context.Context, id string, n int) error {
	return m.setSpotsFn(ctx, id, n)
}

type mockClasses struct {
	getClassFn func(ctx context.Context, classID string) (*catalog.GymClass, error)
}

func (m *mockClasses) GetClass(ctx context.Context, id string) (*catalog.GymClass, error) {
	return m.getClassFn(ctx, id)
}

type mockLedger struct {
	countFn func(ctx context.Context, occurrenceID string) (int, error)
}

func (m *mockLedger) CountActiveForOccurrence(ctx context.Context, id string) (int, error) {
	return m.countFn(ctx, id)
}

type staffAlways bool

func (s staffAlways) IsStaff(ctx context.Context, businessID, uid string) (bool, error) {
	return bool(s), nil
}

func quietMailer() *mailer.ConsoleService {
	m := mailer.NewConsoleService()
	m.Silent = true
	return m
}

func spinTemplate() *catalog.GymClass {
	return &catalog.GymClass{
		ID:              "c1",
		BusinessID:      "biz1",
		Name:            "Spin",
		Instructor:      "Dana",
		DurationMinutes: 45,
		Capacity:        20,
		Category:        "Cardio",
		Color:           "#ff8800",
		Active:          true,
	}
}

func TestScheduleValidation(t *testing.T) {
	svc := NewService(&mockStore{}, &mockClasses{}, &mockLedger{}, staffAlways(true), quietMailer())
	ctx := context.Background()

	cases := []struct {
		name string
		in   ScheduleInput
	}{
		{"missing class", ScheduleInput{Date: "2026-09-10", StartTime: "18:00", EndTime: "19:00"}},
		{"bad date", ScheduleInput{ClassID: "c1", Date: "10/09/2026", StartTime: "18:00", EndTime: "19:00"}},
		{"bad time", ScheduleInput{ClassID: "c1", Date: "2026-09-10", StartTime: "6pm", EndTime: "19:00"}},
		{"end before start", ScheduleInput{ClassID: "c1", Date: "2026-09-10", StartTime: "19:00", EndTime: "18:00"}},
	}
	for _, tc := range cases {
		if _, err := svc.Schedule(ctx, "u1", "biz1", tc.in); !IsErrBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestScheduleDenormalizesTemplate(t *testing.T) {
	var got Occurrence
	svc := NewService(
		&mockStore{createFn: func(ctx context.Context, o Occurrence) (*Occurrence, error) {
			got = o
			o.ID = "occ1"
			return &o, nil
		}},
		&mockClasses{getClassFn: func(ctx context.Context, id string) (*catalog.GymClass, error) {
			return spinTemplate(), nil
		}},
		&mockLedger{}, staffAlways(true), quietMailer(),
	)

	seats := 12
	_, err := svc.Schedule(context.Background(), "u1", "biz1", ScheduleInput{
		ClassID: "c1", Date: "2026-09-10", StartTime: "18:00", EndTime: "18:45", Capacity: &seats,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ClassName != "Spin" || got.Instructor != "Dana" || got.Color != "#ff8800" {
		t.Errorf("template fields not copied: %+v", got)
	}
	if got.Capacity != 12 {
		t.Errorf("capacity override ignored: %d", got.Capacity)
	}
	if got.Status != StatusScheduled || got.BookedSpots != 0 {
		t.Errorf("occurrence = %+v", got)
	}
}

func TestScheduleRejectsInactiveTemplate(t *testing.T) {
	inactive := spinTemplate()
	inactive.Active = false
	svc := NewService(&mockStore{},
		&mockClasses{getClassFn: func(ctx context.Context, id string) (*catalog.GymClass, error) {
			return inactive, nil
		}},
		&mockLedger{}, staffAlways(true), quietMailer(),
	)

	_, err := svc.Schedule(context.Background(), "u1", "biz1", ScheduleInput{
		ClassID: "c1", Date: "2026-09-10", StartTime: "18:00", EndTime: "19:00",
	})
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func scheduledOccurrence() *Occurrence {
	return &Occurrence{
		ID: "occ1", BusinessID: "biz1", ClassID: "c1", ClassName: "Spin",
		Capacity: 20, BookedSpots: 3,
		Date: "2026-09-10", StartTime: "18:00", EndTime: "18:45",
		Status: StatusScheduled,
	}
}

func TestCancelCascadesAndEmails(t *testing.T) {
	mails := quietMailer()
	svc := NewService(
		&mockStore{
			getFn: func(ctx context.Context, id string) (*Occurrence, error) {
				return scheduledOccurrence(), nil
			},
			cancelCascadeFn: func(ctx context.Context, id, by, reason string) ([]booking.Booking, error) {
				return []booking.Booking{
					{ID: "b1", MemberName: "Alice", MemberEmail: "alice@example.com"},
					{ID: "b2", MemberName: "Bob", MemberEmail: "bob@example.com"},
					{ID: "b3"}, // walk-in without email
				}, nil
			},
		},
		&mockClasses{}, &mockLedger{}, staffAlways(true), mails,
	)

	res, err := svc.Cancel(context.Background(), "staff1", "biz1", "occ1", CancelInput{Reason: "instructor sick"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BookingsCancelled != 3 {
		t.Errorf("bookingsCancelled = %d", res.BookingsCancelled)
	}
	if res.EmailsSent != 2 || len(res.EmailFailures) != 0 {
		t.Errorf("emailsSent = %d, failures = %v", res.EmailsSent, res.EmailFailures)
	}
	if res.Occurrence.Status != StatusCancelled || res.Occurrence.BookedSpots != 0 {
		t.Errorf("occurrence = %+v", res.Occurrence)
	}
	if got := len(mails.Sent()); got != 2 {
		t.Errorf("recorded %d mails", got)
	}
}

func TestCancelReportsEmailFailuresWithoutFailing(t *testing.T) {
	mails := quietMailer()
	mails.FailAll = true
	svc := NewService(
		&mockStore{
			getFn: func(ctx context.Context, id string) (*Occurrence, error) {
				return scheduledOccurrence(), nil
			},
			cancelCascadeFn: func(ctx context.Context, id, by, reason string) ([]booking.Booking, error) {
				return []booking.Booking{{ID: "b1", MemberEmail: "alice@example.com"}}, nil
			},
		},
		&mockClasses{}, &mockLedger{}, staffAlways(true), mails,
	)

	res, err := svc.Cancel(context.Background(), "staff1", "biz1", "occ1", CancelInput{})
	if err != nil {
		t.Fatalf("cancellation must not fail on email errors: %v", err)
	}
	if res.EmailsSent != 0 || len(res.EmailFailures) != 1 {
		t.Errorf("emailsSent = %d, failures = %v", res.EmailsSent, res.EmailFailures)
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	done := scheduledOccurrence()
	done.Status = StatusCancelled
	svc := NewService(
		&mockStore{getFn: func(ctx context.Context, id string) (*Occurrence, error) {
			return done, nil
		}},
		&mockClasses{}, &mockLedger{}, staffAlways(true), quietMailer(),
	)

	_, err := svc.Cancel(context.Background(), "staff1", "biz1", "occ1", CancelInput{})
	if !IsErrAlreadyCancelled(err) {
		t.Fatalf("expected already cancelled, got %v", err)
	}
}

func TestRecountBookedSpots(t *testing.T) {
	var setTo = -1
	svc := NewService(
		&mockStore{
			getFn: func(ctx context.Context, id string) (*Occurrence, error) {
				return scheduledOccurrence(), nil // bookedSpots: 3
			},
			setSpotsFn: func(ctx context.Context, id string, n int) error {
				setTo = n
				return nil
			},
		},
		&mockClasses{},
		&mockLedger{countFn: func(ctx context.Context, id string) (int, error) { return 7, nil }},
		staffAlways(true), quietMailer(),
	)

	o, err := svc.RecountBookedSpots(context.Background(), "staff1", "biz1", "occ1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.BookedSpots != 7 || setTo != 7 {
		t.Errorf("bookedSpots = %d, setTo = %d", o.BookedSpots, setTo)
	}
}

func TestDeleteRefusesWithActiveBookings(t *testing.T) {
	svc := NewService(
		&mockStore{
			getFn: func(ctx context.Context, id string) (*Occurrence, error) {
				return scheduledOccurrence(), nil
			},
		},
		&mockClasses{},
		&mockLedger{countFn: func(ctx context.Context, id string) (int, error) { return 2, nil }},
		staffAlways(true), quietMailer(),
	)

	err := svc.Delete(context.Background(), "staff1", "biz1", "occ1")
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
