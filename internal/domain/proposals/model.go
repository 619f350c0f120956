package proposals

import (
	"strings"
	"time"
)

const (
	StatusDraft = "draft"
	StatusSent  = "sent"
)

// Proposal is a sales pitch drafted for one CRM client. It stays a draft
// until sent, at which point it links to its sent-email ledger entry.
type Proposal struct {
	ID          string    `firestore:"id" json:"id"`
	UserUID     string    `firestore:"userUid" json:"-"`
	ClientID    string    `firestore:"clientId" json:"clientId"`
	ClientName  string    `firestore:"clientName,omitempty" json:"clientName,omitempty"`
	Subject     string    `firestore:"subject" json:"subject"`
	Body        string    `firestore:"body" json:"body"`
	Status      string    `firestore:"status" json:"status"`
	SentEmailID string    `firestore:"sentEmailId,omitempty" json:"sentEmailId,omitempty"`
	SentAt      time.Time `firestore:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// GenerateInput represents input for drafting a proposal
type GenerateInput struct {
	ClientID string `json:"clientId"`
	Goals    string `json:"goals,omitempty"`    // what the user wants to pitch
	Tone     string `json:"tone,omitempty"`     // e.g. "formal", "friendly"
}

func (in *GenerateInput) Trim() {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Goals = strings.TrimSpace(in.Goals)
	in.Tone = strings.TrimSpace(in.Tone)
}

// UpdateInput represents input for editing a draft
type UpdateInput struct {
	Subject *string `json:"subject,omitempty"`
	Body    *string `json:"body,omitempty"`
}

func (in *UpdateInput) Trim() {
	if in.Subject != nil {
		*in.Subject = strings.TrimSpace(*in.Subject)
	}
	if in.Body != nil {
		*in.Body = strings.TrimSpace(*in.Body)
	}
}
