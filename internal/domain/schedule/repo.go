package schedule

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"gymdesk/backend/internal/domain/booking"
)

// Firestore batches cap out at 500 writes; stay under it.
const batchLimit = 450

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("scheduledClasses")
}

func (r *Repo) bookings() *firestore.CollectionRef {
	return r.fs.Collection("bookings")
}

func (r *Repo) Create(ctx context.Context, o Occurrence) (*Occurrence, error) {
	ref := r.col().NewDoc()
	o.ID = ref.ID
	if _, err := ref.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create scheduled class: %w", err)
	}
	return &o, nil
}

func (r *Repo) Get(ctx context.Context, occurrenceID string) (*Occurrence, error) {
	doc, err := r.col().Doc(occurrenceID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled class not found", ErrNotFound)
	}
	var o Occurrence
	if err := doc.DataTo(&o); err != nil {
		return nil, fmt.Errorf("failed to parse scheduled class: %w", err)
	}
	if o.ID == "" {
		o.ID = doc.Ref.ID
	}
	return &o, nil
}

func (r *Repo) Update(ctx context.Context, occurrenceID string, updates map[string]interface{}) (*Occurrence, error) {
	ref := r.col().Doc(occurrenceID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update scheduled class: %w", err)
	}
	return r.Get(ctx, occurrenceID)
}

func (r *Repo) Delete(ctx context.Context, occurrenceID string) error {
	if _, err := r.col().Doc(occurrenceID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete scheduled class: %w", err)
	}
	return nil
}

// ListRange returns occurrences in a business between two dates inclusive.
// Dates are YYYY-MM-DD strings so string order is date order.
func (r *Repo) ListRange(ctx context.Context, businessID, fromDate, toDate string) ([]Occurrence, error) {
	it := r.col().
		Where("businessId", "==", businessID).
		Where("date", ">=", fromDate).
		Where("date", "<=", toDate).
		OrderBy("date", firestore.Asc).
		Documents(ctx)
	defer it.Stop()

	out := []Occurrence{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var o Occurrence
		if err := doc.DataTo(&o); err != nil {
			continue
		}
		if o.ID == "" {
			o.ID = doc.Ref.ID
		}
		out = append(out, o)
	}
	return out, nil
}

// CancelCascade marks the occurrence cancelled and flips every active
// booking on it in chunked write batches. It returns the bookings that were
// cancelled so the caller can notify their holders.
func (r *Repo) CancelCascade(ctx context.Context, occurrenceID, cancelledBy, reason string) ([]booking.Booking, error) {
	now := time.Now().UTC()

	it := r.bookings().
		Where("occurrenceId", "==", occurrenceID).
		Where("status", "==", booking.StatusBooked).
		Documents(ctx)
	defer it.Stop()

	affected := []booking.Booking{}
	refs := []*firestore.DocumentRef{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b booking.Booking
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		affected = append(affected, b)
		refs = append(refs, doc.Ref)
	}

	bookingPatch := map[string]interface{}{
		"status":       booking.StatusCancelled,
		"cancelledAt":  now,
		"cancelledBy":  cancelledBy,
		"cancelReason": reason,
	}

	batch := r.fs.Batch()
	batch.Set(r.col().Doc(occurrenceID), map[string]interface{}{
		"status":             StatusCancelled,
		"cancellationReason": reason,
		"cancelledAt":        now,
		"cancelledBy":        cancelledBy,
		"bookedSpots":        0,
		"updatedAt":          now,
	}, firestore.MergeAll)
	writes := 1

	for _, ref := range refs {
		batch.Set(ref, bookingPatch, firestore.MergeAll)
		writes++
		if writes >= batchLimit {
			if _, err := batch.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to cancel bookings: %w", err)
			}
			batch = r.fs.Batch()
			writes = 0
		}
	}
	if writes > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to cancel bookings: %w", err)
		}
	}

	return affected, nil
}

// SetBookedSpots overwrites the seat counter, used by the repair path.
func (r *Repo) SetBookedSpots(ctx context.Context, occurrenceID string, n int) error {
	_, err := r.col().Doc(occurrenceID).Set(ctx, map[string]interface{}{
		"bookedSpots": n,
		"updatedAt":   time.Now().UTC(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set bookedSpots: %w", err)
	}
	return nil
}
