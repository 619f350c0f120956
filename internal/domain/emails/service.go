package emails

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"gymdesk/backend/internal/mailer"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, e SentEmail) (*SentEmail, error)
	Get(ctx context.Context, emailID string) (*SentEmail, error)
	FindByIdempotencyKey(ctx context.Context, userUID, key string) (*SentEmail, error)
	FindByOpenToken(ctx context.Context, token string) (*SentEmail, error)
	IncrementOpen(ctx context.Context, emailID string, firstOpen bool) error
	List(ctx context.Context, userUID string, limit int) ([]SentEmail, error)
}

// ContactToucher stamps a client's last contact date after an outreach.
type ContactToucher interface {
	TouchLastContact(ctx context.Context, uid, clientID string) error
}

type Service struct {
	store   Store
	mail    mailer.Service
	contact ContactToucher // optional
}

func NewService(store Store, mail mailer.Service, contact ContactToucher) *Service {
	return &Service{store: store, mail: mail, contact: contact}
}

// Send delivers an email and writes exactly one ledger entry for the
// attempt. Re-sending with the same idempotency key returns the prior entry
// without touching the relay.
func (s *Service) Send(ctx context.Context, uid string, in SendInput) (*SentEmail, error) {
	in.Trim()
	if in.To == "" || !strings.Contains(in.To, "@") {
		return nil, fmt.Errorf("%w: a valid recipient is required", ErrBadRequest)
	}
	if in.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrBadRequest)
	}
	if in.Body == "" && in.HTMLBody == "" {
		return nil, fmt.Errorf("%w: body is required", ErrBadRequest)
	}

	if in.IdempotencyKey != "" {
		if prior, err := s.store.FindByIdempotencyKey(ctx, uid, in.IdempotencyKey); err == nil {
			return prior, nil
		}
	}

	sendErr := s.mail.Send(ctx, &mailer.Message{
		To:          []mail.Address{{Name: in.ToName, Address: in.To}},
		Subject:     in.Subject,
		TextContent: in.Body,
		HTMLContent: in.HTMLBody,
	})

	entry := SentEmail{
		UserUID:        uid,
		To:             in.To,
		Subject:        in.Subject,
		Body:           in.Body,
		DeliveryStatus: DeliverySent,
		SentAt:         time.Now().UTC(),
		ClientID:       in.ClientID,
		ProposalID:     in.ProposalID,
		OpenToken:      uuid.NewString(),
		IdempotencyKey: in.IdempotencyKey,
	}
	if sendErr != nil {
		entry.DeliveryStatus = DeliveryFailed
	}

	recorded, recordErr := s.store.Create(ctx, entry)
	if recordErr != nil {
		if sendErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
		}
		return nil, recordErr
	}

	if sendErr != nil {
		return recorded, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
	}

	if s.contact != nil && in.ClientID != "" {
		if err := s.contact.TouchLastContact(ctx, uid, in.ClientID); err != nil {
			log.Printf("emails: failed to touch lastContactDate for client %s: %v", in.ClientID, err)
		}
	}

	return recorded, nil
}

// TrackOpen records a tracking pixel hit. Unknown tokens are swallowed so
// the pixel endpoint never errors to the mail client.
func (s *Service) TrackOpen(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	e, err := s.store.FindByOpenToken(ctx, token)
	if err != nil {
		return
	}
	if err := s.store.IncrementOpen(ctx, e.ID, e.OpenCount == 0); err != nil {
		log.Printf("emails: failed to record open for %s: %v", e.ID, err)
	}
}

// List returns the caller's outbound mail log.
func (s *Service) List(ctx context.Context, uid string, limit int) ([]SentEmail, error) {
	return s.store.List(ctx, uid, limit)
}

// Get returns one ledger entry the caller owns.
func (s *Service) Get(ctx context.Context, uid, emailID string) (*SentEmail, error) {
	e, err := s.store.Get(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if e.UserUID != uid {
		return nil, fmt.Errorf("%w: email not found", ErrNotFound)
	}
	return e, nil
}
