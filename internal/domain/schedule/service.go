package schedule

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"time"

	"gymdesk/backend/internal/domain/booking"
	"gymdesk/backend/internal/domain/catalog"
	"gymdesk/backend/internal/mailer"
	"gymdesk/backend/internal/utils"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, o Occurrence) (*Occurrence, error)
	Get(ctx context.Context, occurrenceID string) (*Occurrence, error)
	Update(ctx context.Context, occurrenceID string, updates map[string]interface{}) (*Occurrence, error)
	Delete(ctx context.Context, occurrenceID string) error
	ListRange(ctx context.Context, businessID, fromDate, toDate string) ([]Occurrence, error)
	CancelCascade(ctx context.Context, occurrenceID, cancelledBy, reason string) ([]booking.Booking, error)
	SetBookedSpots(ctx context.Context, occurrenceID string, n int) error
}

// ClassSource resolves class templates when scheduling.
type ClassSource interface {
	GetClass(ctx context.Context, classID string) (*catalog.GymClass, error)
}

// Ledger answers booking questions the scheduler needs.
type Ledger interface {
	CountActiveForOccurrence(ctx context.Context, occurrenceID string) (int, error)
}

// StaffChecker answers whether a user is staff of a business.
type StaffChecker interface {
	IsStaff(ctx context.Context, businessID, uid string) (bool, error)
}

type Service struct {
	store   Store
	classes ClassSource
	ledger  Ledger
	staff   StaffChecker
	mail    mailer.Service
}

func NewService(store Store, classes ClassSource, ledger Ledger, staff StaffChecker, mail mailer.Service) *Service {
	return &Service{store: store, classes: classes, ledger: ledger, staff: staff, mail: mail}
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

// Schedule puts a class template on the calendar as a concrete occurrence.
func (s *Service) Schedule(ctx context.Context, uid, businessID string, in ScheduleInput) (*Occurrence, error) {
	in.Trim()
	if in.ClassID == "" {
		return nil, fmt.Errorf("%w: classId is required", ErrBadRequest)
	}
	if !utils.IsValidDate(in.Date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest)
	}
	if !utils.IsValidHHMM(in.StartTime) || !utils.IsValidHHMM(in.EndTime) {
		return nil, fmt.Errorf("%w: startTime and endTime must be HH:MM", ErrBadRequest)
	}
	start, _ := utils.ParseTime(in.StartTime)
	end, _ := utils.ParseTime(in.EndTime)
	if !end.After(start) {
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrBadRequest)
	}
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}

	tmpl, err := s.classes.GetClass(ctx, in.ClassID)
	if err != nil {
		return nil, err
	}
	if tmpl.BusinessID != businessID {
		return nil, fmt.Errorf("%w: class not found", ErrNotFound)
	}
	if !tmpl.Active {
		return nil, fmt.Errorf("%w: class template is inactive", ErrBadRequest)
	}

	instructor := tmpl.Instructor
	if in.Instructor != nil && *in.Instructor != "" {
		instructor = *in.Instructor
	}
	capacity := tmpl.Capacity
	if in.Capacity != nil {
		if *in.Capacity < 1 {
			return nil, fmt.Errorf("%w: capacity must be at least 1", ErrBadRequest)
		}
		capacity = *in.Capacity
	}

	now := time.Now().UTC()
	return s.store.Create(ctx, Occurrence{
		BusinessID:  businessID,
		ClassID:     tmpl.ID,
		ClassName:   tmpl.Name,
		Instructor:  instructor,
		Category:    tmpl.Category,
		Color:       tmpl.Color,
		Capacity:    capacity,
		BookedSpots: 0,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      StatusScheduled,
		CreatedBy:   uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) Get(ctx context.Context, businessID, occurrenceID string) (*Occurrence, error) {
	o, err := s.store.Get(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	if o.BusinessID != businessID {
		return nil, fmt.Errorf("%w: scheduled class not found", ErrNotFound)
	}
	return o, nil
}

// ListRange returns the timetable between two dates inclusive. Any signed-in
// member of the gym may read it.
func (s *Service) ListRange(ctx context.Context, businessID, fromDate, toDate string) ([]Occurrence, error) {
	if !utils.IsValidDate(fromDate) || !utils.IsValidDate(toDate) {
		return nil, fmt.Errorf("%w: from and to must be YYYY-MM-DD", ErrBadRequest)
	}
	if toDate < fromDate {
		return nil, fmt.Errorf("%w: to must not be before from", ErrBadRequest)
	}
	return s.store.ListRange(ctx, businessID, fromDate, toDate)
}

// Cancel cancels an occurrence, cascades to its active bookings and emails
// every affected holder. Email delivery is best-effort; failures are
// reported in the result, never rolled back.
func (s *Service) Cancel(ctx context.Context, uid, businessID, occurrenceID string, in CancelInput) (*CancelResult, error) {
	in.Trim()
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, businessID, occurrenceID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	affected, err := s.store.CancelCascade(ctx, occurrenceID, uid, in.Reason)
	if err != nil {
		return nil, err
	}

	o.Status = StatusCancelled
	o.CancellationReason = in.Reason
	o.CancelledBy = uid
	o.CancelledAt = time.Now().UTC()
	o.BookedSpots = 0

	result := &CancelResult{
		Occurrence:        o,
		BookingsCancelled: len(affected),
	}

	for _, b := range affected {
		if b.MemberEmail == "" {
			continue
		}
		msg := &mailer.Message{
			To:           []mail.Address{{Name: b.MemberName, Address: b.MemberEmail}},
			Subject:      fmt.Sprintf("Class cancelled: %s on %s", o.ClassName, o.Date),
			TemplateName: mailer.TemplateClassCancelled,
			TemplateData: mailer.ClassCancelledData{
				ClassName:  o.ClassName,
				Date:       o.Date,
				StartTime:  o.StartTime,
				EndTime:    o.EndTime,
				Instructor: o.Instructor,
				Reason:     in.Reason,
			},
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			log.Printf("schedule: cancellation email to %s failed: %v", b.MemberEmail, err)
			result.EmailFailures = append(result.EmailFailures, b.MemberEmail)
			continue
		}
		result.EmailsSent++
	}

	return result, nil
}

// RecountBookedSpots recomputes the seat counter from the booking ledger.
// Repair path for counters that drifted before the transactional writes
// were in place.
func (s *Service) RecountBookedSpots(ctx context.Context, uid, businessID, occurrenceID string) (*Occurrence, error) {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, businessID, occurrenceID)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.CountActiveForOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	if n != o.BookedSpots {
		if err := s.store.SetBookedSpots(ctx, occurrenceID, n); err != nil {
			return nil, err
		}
		o.BookedSpots = n
	}
	return o, nil
}

// Delete removes an occurrence that has no active bookings. Occurrences
// with bookings must be cancelled instead so holders get notified.
func (s *Service) Delete(ctx context.Context, uid, businessID, occurrenceID string) error {
	if err := s.requireStaff(ctx, businessID, uid); err != nil {
		return err
	}
	o, err := s.Get(ctx, businessID, occurrenceID)
	if err != nil {
		return err
	}
	n, err := s.ledger.CountActiveForOccurrence(ctx, occurrenceID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: occurrence has active bookings, cancel it instead", ErrBadRequest)
	}
	return s.store.Delete(ctx, o.ID)
}
