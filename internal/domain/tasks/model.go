package tasks

import (
	"strings"
	"time"
)

// Task is a personal to-do on a user's CRM board, optionally pinned to a
// client (call back, send contract, chase an invoice).
type Task struct {
	ID          string     `firestore:"id" json:"id"`
	UserUID     string     `firestore:"userUid" json:"-"`
	Title       string     `firestore:"title" json:"title"`
	Notes       string     `firestore:"notes,omitempty" json:"notes,omitempty"`
	ClientID    string     `firestore:"clientId,omitempty" json:"clientId,omitempty"`
	DueDate     string     `firestore:"dueDate,omitempty" json:"dueDate,omitempty"`
	Done        bool       `firestore:"done" json:"done"`
	CompletedAt *time.Time `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

type CreateTaskInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=5000"`
	ClientID string `json:"clientId,omitempty" validate:"omitempty,max=64"`
	DueDate  string `json:"dueDate,omitempty"`
}

func (in *CreateTaskInput) Trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.DueDate = strings.TrimSpace(in.DueDate)
}

// UpdateTaskInput carries only the fields the caller wants to change.
type UpdateTaskInput struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
	DueDate *string `json:"dueDate,omitempty"`
	Done    *bool   `json:"done,omitempty"`
}

func (in *UpdateTaskInput) Trim() {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Notes != nil {
		n := strings.TrimSpace(*in.Notes)
		in.Notes = &n
	}
	if in.DueDate != nil {
		d := strings.TrimSpace(*in.DueDate)
		in.DueDate = &d
	}
}
