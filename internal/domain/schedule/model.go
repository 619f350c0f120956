package schedule

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Occurrence is one concrete class on the calendar. Class details are
// denormalized from the template at scheduling time so later template edits
// don't rewrite history.
type Occurrence struct {
	ID          string `firestore:"id" json:"id"`
	BusinessID  string `firestore:"businessId" json:"businessId"`
	ClassID     string `firestore:"classId" json:"classId"`
	ClassName   string `firestore:"className" json:"className"`
	Instructor  string `firestore:"instructor,omitempty" json:"instructor,omitempty"`
	Category    string `firestore:"category,omitempty" json:"category,omitempty"`
	Color       string `firestore:"color,omitempty" json:"color,omitempty"`
	Capacity    int    `firestore:"capacity" json:"capacity"`
	BookedSpots int    `firestore:"bookedSpots" json:"bookedSpots"`

	Date      string `firestore:"date" json:"date"`           // YYYY-MM-DD
	StartTime string `firestore:"startTime" json:"startTime"` // HH:MM
	EndTime   string `firestore:"endTime" json:"endTime"`     // HH:MM

	Status             string    `firestore:"status" json:"status"`
	CancellationReason string    `firestore:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledAt        time.Time `firestore:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy        string    `firestore:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`

	CreatedBy string    `firestore:"createdBy" json:"createdBy"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// SpotsLeft returns remaining seats, or -1 for unlimited capacity.
func (o *Occurrence) SpotsLeft() int {
	if o.Capacity <= 0 {
		return -1
	}
	left := o.Capacity - o.BookedSpots
	if left < 0 {
		return 0
	}
	return left
}

// ScheduleInput represents input for putting a class on the calendar
type ScheduleInput struct {
	ClassID   string `json:"classId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	// Optional per-occurrence overrides of the template values.
	Instructor *string `json:"instructor,omitempty"`
	Capacity   *int    `json:"capacity,omitempty"`
}

func (in *ScheduleInput) Trim() {
	in.ClassID = strings.TrimSpace(in.ClassID)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	if in.Instructor != nil {
		*in.Instructor = strings.TrimSpace(*in.Instructor)
	}
}

// CancelInput represents input for cancelling a scheduled class
type CancelInput struct {
	Reason string `json:"reason,omitempty"`
}

func (in *CancelInput) Trim() {
	in.Reason = strings.TrimSpace(in.Reason)
}

// CancelResult reports what the cancellation cascade did. Email delivery is
// best-effort: the class stays cancelled even when some notifications fail.
type CancelResult struct {
	Occurrence        *Occurrence `json:"occurrence"`
	BookingsCancelled int         `json:"bookingsCancelled"`
	EmailsSent        int         `json:"emailsSent"`
	EmailFailures     []string    `json:"emailFailures,omitempty"`
}
