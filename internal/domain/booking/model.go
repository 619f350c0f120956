package booking

import (
	"strings"
	"time"
)

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Booking is one seat claimed on a scheduled class occurrence.
type Booking struct {
	ID           string    `firestore:"id" json:"id"`
	BusinessID   string    `firestore:"businessId" json:"businessId"`
	OccurrenceID string    `firestore:"occurrenceId" json:"occurrenceId"`
	UserUID      string    `firestore:"userUid" json:"userUid"`
	MemberName   string    `firestore:"memberName,omitempty" json:"memberName,omitempty"`
	MemberEmail  string    `firestore:"memberEmail,omitempty" json:"memberEmail,omitempty"`
	Status       string    `firestore:"status" json:"status"`
	BookedAt     time.Time `firestore:"bookedAt" json:"bookedAt"`
	CancelledAt  time.Time `firestore:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy  string    `firestore:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelReason string    `firestore:"cancelReason,omitempty" json:"cancelReason,omitempty"`
}

// CanBook decides whether a new booking may be taken against an occurrence.
// It is the single place the seat invariants live; the repo applies it
// inside the booking transaction.
func CanBook(occStatus string, bookedSpots, capacity int, hasActiveBooking bool) error {
	if occStatus == "cancelled" {
		return ErrClassCancelled
	}
	if hasActiveBooking {
		return ErrAlreadyBooked
	}
	if capacity > 0 && bookedSpots >= capacity {
		return ErrClassFull
	}
	return nil
}

// BookInput represents input for booking a spot
type BookInput struct {
	OccurrenceID string `json:"occurrenceId"`
	MemberName   string `json:"memberName,omitempty"`
	MemberEmail  string `json:"memberEmail,omitempty"`
}

func (in *BookInput) Trim() {
	in.OccurrenceID = strings.TrimSpace(in.OccurrenceID)
	in.MemberName = strings.TrimSpace(in.MemberName)
	in.MemberEmail = strings.TrimSpace(in.MemberEmail)
}
