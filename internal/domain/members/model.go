package members

import (
	"strings"
	"time"
)

const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
)

var ValidStatuses = []string{StatusTrial, StatusActive, StatusPaused, StatusCancelled}

func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether a membership may move from one status to
// another. Cancelled is terminal except for re-activation.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusTrial:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusPaused || to == StatusCancelled
	case StatusPaused:
		return to == StatusActive || to == StatusCancelled
	case StatusCancelled:
		return to == StatusActive
	}
	return false
}

// Member is a paying gym customer of a business, distinct from staff.
type Member struct {
	ID             string    `firestore:"id" json:"id"`
	BusinessID     string    `firestore:"businessId" json:"businessId"`
	UserUID        string    `firestore:"userUid,omitempty" json:"userUid,omitempty"`
	Name           string    `firestore:"name" json:"name"`
	Email          string    `firestore:"email,omitempty" json:"email,omitempty"`
	Phone          string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	MembershipType string    `firestore:"membershipType,omitempty" json:"membershipType,omitempty"`
	Status         string    `firestore:"status" json:"status"`
	PhotoURL       string    `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	JoinedAt       time.Time `firestore:"joinedAt" json:"joinedAt"`
	CreatedBy      string    `firestore:"createdBy" json:"createdBy"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// StatusChange is one entry of a member's status history.
type StatusChange struct {
	From      string    `firestore:"from" json:"from"`
	To        string    `firestore:"to" json:"to"`
	ChangedBy string    `firestore:"changedBy" json:"changedBy"`
	ChangedAt time.Time `firestore:"changedAt" json:"changedAt"`
	Note      string    `firestore:"note,omitempty" json:"note,omitempty"`
}

// AddMemberInput represents input for adding a member
type AddMemberInput struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	UserUID        string `json:"userUid,omitempty"`
	MembershipType string `json:"membershipType,omitempty"`
	Status         string `json:"status,omitempty"` // defaults to "trial"
}

func (in *AddMemberInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.UserUID = strings.TrimSpace(in.UserUID)
	in.MembershipType = strings.TrimSpace(in.MembershipType)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
}

// UpdateMemberInput represents input for updating member details.
// Status changes go through ChangeStatus, not here.
type UpdateMemberInput struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	MembershipType *string `json:"membershipType,omitempty"`
	PhotoURL       *string `json:"photoUrl,omitempty"`
}

func (in *UpdateMemberInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.Name)
	trim(in.Email)
	trim(in.Phone)
	trim(in.MembershipType)
	trim(in.PhotoURL)
}

// ChangeStatusInput represents input for a membership status change
type ChangeStatusInput struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func (in *ChangeStatusInput) Trim() {
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Note = strings.TrimSpace(in.Note)
}
