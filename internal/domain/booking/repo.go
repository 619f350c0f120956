package booking

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("bookings")
}

func (r *Repo) occurrences() *firestore.CollectionRef {
	return r.fs.Collection("scheduledClasses")
}

// occurrenceSeatState is the slice of the occurrence doc the booking
// transaction cares about.
type occurrenceSeatState struct {
	BusinessID  string `firestore:"businessId"`
	Status      string `firestore:"status"`
	Capacity    int    `firestore:"capacity"`
	BookedSpots int    `firestore:"bookedSpots"`
}

// Book claims a seat. The capacity check, the duplicate check and the
// bookedSpots increment happen in one transaction so the counter can never
// exceed capacity under concurrent requests.
func (r *Repo) Book(ctx context.Context, b Booking) (*Booking, error) {
	occRef := r.occurrences().Doc(b.OccurrenceID)
	bookingRef := r.col().NewDoc()
	b.ID = bookingRef.ID

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		occDoc, err := tx.Get(occRef)
		if err != nil {
			return fmt.Errorf("%w: scheduled class not found", ErrNotFound)
		}
		var occ occurrenceSeatState
		if err := occDoc.DataTo(&occ); err != nil {
			return fmt.Errorf("failed to parse scheduled class: %w", err)
		}
		if b.BusinessID != "" && occ.BusinessID != b.BusinessID {
			return fmt.Errorf("%w: scheduled class not found", ErrNotFound)
		}
		b.BusinessID = occ.BusinessID

		dupQuery := r.col().
			Where("occurrenceId", "==", b.OccurrenceID).
			Where("userUid", "==", b.UserUID).
			Where("status", "==", StatusBooked).
			Limit(1)
		dup, err := tx.Documents(dupQuery).GetAll()
		if err != nil {
			return err
		}

		if err := CanBook(occ.Status, occ.BookedSpots, occ.Capacity, len(dup) > 0); err != nil {
			return err
		}

		if err := tx.Create(bookingRef, b); err != nil {
			return err
		}
		return tx.Update(occRef, []firestore.Update{
			{Path: "bookedSpots", Value: firestore.Increment(1)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Cancel releases a seat. The booking flip and the bookedSpots decrement
// happen in one transaction; the counter never goes below zero.
func (r *Repo) Cancel(ctx context.Context, bookingID, cancelledBy, reason string) (*Booking, error) {
	bookingRef := r.col().Doc(bookingID)
	var out Booking

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(bookingRef)
		if err != nil {
			return fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		var b Booking
		if err := doc.DataTo(&b); err != nil {
			return fmt.Errorf("failed to parse booking: %w", err)
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		if b.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}

		occRef := r.occurrences().Doc(b.OccurrenceID)
		occDoc, err := tx.Get(occRef)
		decrement := false
		if err == nil {
			var occ occurrenceSeatState
			if err := occDoc.DataTo(&occ); err == nil && occ.BookedSpots > 0 {
				decrement = true
			}
		}

		now := time.Now().UTC()
		if err := tx.Set(bookingRef, map[string]interface{}{
			"status":       StatusCancelled,
			"cancelledAt":  now,
			"cancelledBy":  cancelledBy,
			"cancelReason": reason,
		}, firestore.MergeAll); err != nil {
			return err
		}
		if decrement {
			if err := tx.Update(occRef, []firestore.Update{
				{Path: "bookedSpots", Value: firestore.Increment(-1)},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}

		b.Status = StatusCancelled
		b.CancelledAt = now
		b.CancelledBy = cancelledBy
		b.CancelReason = reason
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, bookingID string) (*Booking, error) {
	doc, err := r.col().Doc(bookingID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	var b Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to parse booking: %w", err)
	}
	if b.ID == "" {
		b.ID = doc.Ref.ID
	}
	return &b, nil
}

// ListForOccurrence returns bookings on an occurrence. When activeOnly is
// set, cancelled bookings are excluded.
func (r *Repo) ListForOccurrence(ctx context.Context, occurrenceID string, activeOnly bool) ([]Booking, error) {
	q := r.col().Where("occurrenceId", "==", occurrenceID)
	if activeOnly {
		q = q.Where("status", "==", StatusBooked)
	}
	return collect(q.Documents(ctx))
}

// ListForUser returns a user's bookings across a business, newest first.
func (r *Repo) ListForUser(ctx context.Context, businessID, userUID string, limit int) ([]Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.col().
		Where("businessId", "==", businessID).
		Where("userUid", "==", userUID).
		OrderBy("bookedAt", firestore.Desc).
		Limit(limit)
	return collect(q.Documents(ctx))
}

// CountActiveForOccurrence counts live bookings, used by the scheduler's
// counter repair.
func (r *Repo) CountActiveForOccurrence(ctx context.Context, occurrenceID string) (int, error) {
	bs, err := r.ListForOccurrence(ctx, occurrenceID, true)
	if err != nil {
		return 0, err
	}
	return len(bs), nil
}

func collect(it *firestore.DocumentIterator) ([]Booking, error) {
	defer it.Stop()
	out := []Booking{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b Booking
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		out = append(out, b)
	}
	return out, nil
}
