package emails

import (
	"strings"
	"time"
)

const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// SentEmail is one ledger entry in the outbound mail log. Exactly one entry
// is written per delivery attempt, whatever the outcome.
type SentEmail struct {
	ID             string    `firestore:"id" json:"id"`
	UserUID        string    `firestore:"userUid" json:"-"`
	To             string    `firestore:"to" json:"to"`
	Subject        string    `firestore:"subject" json:"subject"`
	Body           string    `firestore:"body,omitempty" json:"body,omitempty"`
	DeliveryStatus string    `firestore:"deliveryStatus" json:"deliveryStatus"`
	SentAt         time.Time `firestore:"sentAt" json:"sentAt"`

	ClientID   string `firestore:"clientId,omitempty" json:"clientId,omitempty"`
	ProposalID string `firestore:"proposalId,omitempty" json:"proposalId,omitempty"`

	// Open tracking. The token is embedded in a pixel URL; the counter
	// moves every time the pixel is fetched.
	OpenToken string    `firestore:"openToken" json:"-"`
	OpenCount int       `firestore:"openCount" json:"openCount"`
	OpenedAt  time.Time `firestore:"openedAt,omitempty" json:"openedAt,omitempty"`

	IdempotencyKey string `firestore:"idempotencyKey,omitempty" json:"-"`
}

// SendInput represents input for sending an email
type SendInput struct {
	To             string `json:"to"`
	ToName         string `json:"toName,omitempty"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	HTMLBody       string `json:"htmlBody,omitempty"`
	ClientID       string `json:"clientId,omitempty"`
	ProposalID     string `json:"proposalId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (in *SendInput) Trim() {
	in.To = strings.TrimSpace(in.To)
	in.ToName = strings.TrimSpace(in.ToName)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	in.HTMLBody = strings.TrimSpace(in.HTMLBody)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.ProposalID = strings.TrimSpace(in.ProposalID)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
}
