package booking

import (
	"context"
	"fmt"
	"time"
)

// Ledger is the persistence surface the service needs.
type Ledger interface {
	Book(ctx context.Context, b Booking) (*Booking, error)
	Cancel(ctx context.Context, bookingID, cancelledBy, reason string) (*Booking, error)
	Get(ctx context.Context, bookingID string) (*Booking, error)
	ListForOccurrence(ctx context.Context, occurrenceID string, activeOnly bool) ([]Booking, error)
	ListForUser(ctx context.Context, businessID, userUID string, limit int) ([]Booking, error)
}

// StaffChecker answers whether a user is staff of a business.
type StaffChecker interface {
	IsStaff(ctx context.Context, businessID, uid string) (bool, error)
}

type Service struct {
	ledger Ledger
	staff  StaffChecker
}

func NewService(ledger Ledger, staff StaffChecker) *Service {
	return &Service{ledger: ledger, staff: staff}
}

// Book claims a seat for the calling user.
func (s *Service) Book(ctx context.Context, uid, businessID string, in BookInput) (*Booking, error) {
	in.Trim()
	if in.OccurrenceID == "" {
		return nil, fmt.Errorf("%w: occurrenceId is required", ErrBadRequest)
	}
	return s.ledger.Book(ctx, Booking{
		BusinessID:   businessID,
		OccurrenceID: in.OccurrenceID,
		UserUID:      uid,
		MemberName:   in.MemberName,
		MemberEmail:  in.MemberEmail,
		Status:       StatusBooked,
		BookedAt:     time.Now().UTC(),
	})
}

// Cancel releases a booking. The booking owner may cancel their own;
// staff may cancel anyone's.
func (s *Service) Cancel(ctx context.Context, uid, bookingID, reason string) (*Booking, error) {
	b, err := s.ledger.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserUID != uid {
		ok, err := s.staff.IsStaff(ctx, b.BusinessID, uid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: cannot cancel another user's booking", ErrUnauthorized)
		}
	}
	return s.ledger.Cancel(ctx, bookingID, uid, reason)
}

// ListForOccurrence is a staff view of who is booked into a class.
func (s *Service) ListForOccurrence(ctx context.Context, uid, businessID, occurrenceID string, activeOnly bool) ([]Booking, error) {
	ok, err := s.staff.IsStaff(ctx, businessID, uid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: staff access required", ErrUnauthorized)
	}
	return s.ledger.ListForOccurrence(ctx, occurrenceID, activeOnly)
}

// ListMine returns the calling user's own bookings.
func (s *Service) ListMine(ctx context.Context, uid, businessID string, limit int) ([]Booking, error) {
	return s.ledger.ListForUser(ctx, businessID, uid, limit)
}
