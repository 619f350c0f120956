package clients

import (
	"strings"
	"time"
)

const (
	StatusLead     = "lead"
	StatusProspect = "prospect"
	StatusClient   = "client"
)

var ValidStatuses = []string{StatusLead, StatusProspect, StatusClient}

func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Client is a CRM contact owned by one user: a sales lead, prospect or
// signed client of their gym business.
type Client struct {
	ID              string    `firestore:"id" json:"id"`
	UserUID         string    `firestore:"userUid" json:"-"`
	Name            string    `firestore:"name" json:"name"`
	Email           string    `firestore:"email,omitempty" json:"email,omitempty"`
	Phone           string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	Company         string    `firestore:"company,omitempty" json:"company,omitempty"`
	CompanyNumber   string    `firestore:"companyNumber,omitempty" json:"companyNumber,omitempty"`
	Website         string    `firestore:"website,omitempty" json:"website,omitempty"`
	Status          string    `firestore:"status" json:"status"`
	Source          string    `firestore:"source,omitempty" json:"source,omitempty"`
	Notes           string    `firestore:"notes,omitempty" json:"notes,omitempty"`
	SearchTokens    []string  `firestore:"searchTokens,omitempty" json:"-"`
	LastContactDate time.Time `firestore:"lastContactDate,omitempty" json:"lastContactDate,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// CreateClientInput represents input for creating a CRM client
type CreateClientInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company       string `json:"company,omitempty" validate:"omitempty,max=200"`
	CompanyNumber string `json:"companyNumber,omitempty" validate:"omitempty,max=20"`
	Website       string `json:"website,omitempty" validate:"omitempty,url"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=lead prospect client"`
	Source        string `json:"source,omitempty" validate:"omitempty,max=100"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

func (in *CreateClientInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.CompanyNumber = strings.TrimSpace(in.CompanyNumber)
	in.Website = strings.TrimSpace(in.Website)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Source = strings.TrimSpace(in.Source)
	in.Notes = strings.TrimSpace(in.Notes)
}

// UpdateClientInput represents input for updating a CRM client
type UpdateClientInput struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company       *string `json:"company,omitempty" validate:"omitempty,max=200"`
	CompanyNumber *string `json:"companyNumber,omitempty" validate:"omitempty,max=20"`
	Website       *string `json:"website,omitempty" validate:"omitempty,url"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=lead prospect client"`
	Source        *string `json:"source,omitempty" validate:"omitempty,max=100"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

func (in *UpdateClientInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.Name)
	trim(in.Phone)
	trim(in.Company)
	trim(in.CompanyNumber)
	trim(in.Website)
	trim(in.Source)
	trim(in.Notes)
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Status != nil {
		*in.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}
}

// ListQuery narrows a client listing.
type ListQuery struct {
	Status string // optional status filter
	Search string // case-insensitive substring of name/email/company
	Limit  int
	Cursor string // client ID to resume after
}

// ClientPage is one page of a cursor listing.
type ClientPage struct {
	Clients    []Client `json:"clients"`
	NextCursor string   `json:"nextCursor,omitempty"`
}
