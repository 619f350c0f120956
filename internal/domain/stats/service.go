package stats

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// StaffChecker answers whether a user is staff of a business.
type StaffChecker interface {
	IsStaff(ctx context.Context, businessID, uid string) (bool, error)
}

type Service struct {
	fs    *firestore.Client
	staff StaffChecker
}

func NewService(fs *firestore.Client, staff StaffChecker) *Service {
	return &Service{fs: fs, staff: staff}
}

// GetBusinessStats aggregates dashboard numbers for a business.
func (s *Service) GetBusinessStats(ctx context.Context, businessID, uid string) (*BusinessStats, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: businessId is required", ErrBadRequest)
	}
	ok, err := s.staff.IsStaff(ctx, businessID, uid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: staff access required", ErrUnauthorized)
	}

	// Members by status
	memberTotal := 0
	memberStatus := make(map[string]int)

	membersIter := s.fs.Collection("gymMembers").Where("businessId", "==", businessID).Documents(ctx)
	for {
		doc, err := membersIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read members: %w", err)
		}
		memberTotal++
		status, _ := doc.Data()["status"].(string)
		if status == "" {
			status = "unknown"
		}
		memberStatus[status]++
	}

	// Class templates
	classTotal := 0
	classActive := 0

	classesIter := s.fs.Collection("classes").Where("businessId", "==", businessID).Documents(ctx)
	for {
		doc, err := classesIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read classes: %w", err)
		}
		classTotal++
		if active, _ := doc.Data()["active"].(bool); active {
			classActive++
		}
	}

	// Upcoming occupancy: scheduled occurrences from today onward
	today := time.Now().UTC().Format("2006-01-02")

	upcoming := 0
	totalSpots := 0
	bookedSpots := 0

	schedIter := s.fs.Collection("scheduledClasses").
		Where("businessId", "==", businessID).
		Where("status", "==", "scheduled").
		Where("date", ">=", today).
		Documents(ctx)
	for {
		doc, err := schedIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read scheduled classes: %w", err)
		}
		upcoming++
		data := doc.Data()
		seats, _ := data["capacity"].(int64)
		booked, _ := data["bookedSpots"].(int64)
		if seats > 0 {
			totalSpots += int(seats)
			bookedSpots += int(booked)
		}
	}

	var occupancyRate string
	if totalSpots > 0 {
		occupancyRate = fmt.Sprintf("%.1f", float64(bookedSpots)/float64(totalSpots)*100)
	} else {
		occupancyRate = "0"
	}

	// This month's bookings
	now := time.Now().UTC()
	firstDayOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	bookingsTotal := 0
	bookingsActive := 0
	bookingsCancelled := 0

	bookingsIter := s.fs.Collection("bookings").
		Where("businessId", "==", businessID).
		Where("bookedAt", ">=", firstDayOfMonth).
		Documents(ctx)
	for {
		doc, err := bookingsIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bookings: %w", err)
		}
		bookingsTotal++
		status, _ := doc.Data()["status"].(string)
		switch status {
		case "active":
			bookingsActive++
		case "cancelled":
			bookingsCancelled++
		}
	}

	var cancelRate string
	if bookingsTotal > 0 {
		cancelRate = fmt.Sprintf("%.1f", float64(bookingsCancelled)/float64(bookingsTotal)*100)
	} else {
		cancelRate = "0"
	}

	return &BusinessStats{
		Members: MemberStats{
			Total:    memberTotal,
			ByStatus: memberStatus,
		},
		Classes: ClassStats{
			Total:  classTotal,
			Active: classActive,
		},
		Schedule: OccupancyStats{
			Upcoming:      upcoming,
			TotalSpots:    totalSpots,
			BookedSpots:   bookedSpots,
			OccupancyRate: occupancyRate,
		},
		Bookings: BookingStats{
			ThisMonth: MonthlyBookings{
				Total:      bookingsTotal,
				Active:     bookingsActive,
				Cancelled:  bookingsCancelled,
				CancelRate: cancelRate,
			},
		},
	}, nil
}

// GetCRMStats aggregates pipeline and outreach numbers for a user.
func (s *Service) GetCRMStats(ctx context.Context, uid string) (*CRMStats, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	clientTotal := 0
	clientStatus := make(map[string]int)

	clientsIter := s.fs.Collection("clients").Where("userUid", "==", uid).Documents(ctx)
	for {
		doc, err := clientsIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read clients: %w", err)
		}
		clientTotal++
		status, _ := doc.Data()["status"].(string)
		if status == "" {
			status = "lead"
		}
		clientStatus[status]++
	}

	now := time.Now().UTC()
	firstDayOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	sentCount := 0
	failedCount := 0
	openedCount := 0

	emailsIter := s.fs.Collection("sentEmails").
		Where("userUid", "==", uid).
		Where("sentAt", ">=", firstDayOfMonth).
		Documents(ctx)
	for {
		doc, err := emailsIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sent emails: %w", err)
		}
		data := doc.Data()
		status, _ := data["deliveryStatus"].(string)
		switch status {
		case "failed":
			failedCount++
		default:
			sentCount++
		}
		if openCount, _ := data["openCount"].(int64); openCount > 0 {
			openedCount++
		}
	}

	var openRate string
	if sentCount > 0 {
		openRate = fmt.Sprintf("%.1f", float64(openedCount)/float64(sentCount)*100)
	} else {
		openRate = "0"
	}

	return &CRMStats{
		Clients: ClientStats{
			Total:    clientTotal,
			ByStatus: clientStatus,
		},
		Emails: EmailStats{
			ThisMonth: MonthlyEmails{
				Sent:     sentCount,
				Failed:   failedCount,
				Opened:   openedCount,
				OpenRate: openRate,
			},
		},
	}, nil
}
